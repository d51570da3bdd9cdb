package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrInvalidConfig       = goerr.New("invalid configuration")
	ErrUnknownStatus       = goerr.New("unknown status mode")
	ErrInvalidLogLevel     = goerr.New("invalid log level")
	ErrInvalidLogFormat    = goerr.New("invalid log format")
	ErrInvalidBackend      = goerr.New("invalid repository backend")
	ErrMissingProjectID    = goerr.New("firestore project ID is required")
	ErrInvalidTimeZone     = goerr.New("invalid time zone")
	ErrIncompleteGoogle    = goerr.New("google client ID and secret must be set together")
	ErrMissingNoAuthToken  = goerr.New("slack bot token is required to resolve the no-auth user")
	ErrMissingAuthVerifier = goerr.New("no way to verify the request owner is configured")
	ErrConflictingJWTKeys  = goerr.New("JWKS URL and JWT secret are mutually exclusive")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	StatusKey     = "status"
)
