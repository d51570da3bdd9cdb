package config

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

// NewAuthForTest creates an Auth config for testing purposes
func NewAuthForTest(userHeader, noAuthUID string, allowedDomains ...string) *Auth {
	return &Auth{userHeader: userHeader, noAuthUID: noAuthUID, allowedDomains: allowedDomains, trustHeaders: true}
}

// NewJWTAuthForTest creates an Auth config verifying identity tokens
func NewJWTAuthForTest(jwksURL, secret, audience string) *Auth {
	return &Auth{jwksURL: jwksURL, jwtSecret: secret, jwtAudience: audience}
}

// NewSlackForTest creates a Slack config for testing purposes
func NewSlackForTest(apiURL, botToken string) *Slack {
	return &Slack{apiURL: apiURL, botToken: botToken}
}

// NewGoogleForTest creates a Google config for testing purposes
func NewGoogleForTest(clientID, clientSecret string) *Google {
	return &Google{clientID: clientID, clientSecret: clientSecret}
}

// NewDiscordForTest creates a Discord config for testing purposes
func NewDiscordForTest(appURL, timeZone string) *Discord {
	return &Discord{appURL: appURL, timeZone: timeZone}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, projectID string) *Repository {
	return &Repository{backend: backend, projectID: projectID}
}

// NewStatusDefaultsForTest creates a StatusDefaults config for testing purposes
func NewStatusDefaultsForTest(path string) *StatusDefaults {
	return &StatusDefaults{path: path}
}
