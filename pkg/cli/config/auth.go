package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	httpctrl "github.com/secmon-lab/qoit/pkg/controller/http"
	"github.com/secmon-lab/qoit/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// Auth selects how the owner of a request is identified. Sign-in happens
// upstream; the identity arrives as a signed token verified against a JWKS
// URL or a shared secret. Plain identity headers are trusted only when
// explicitly enabled.
type Auth struct {
	userHeader     string
	emailHeader    string
	nameHeader     string
	tokenHeader    string
	jwksURL        string
	jwtSecret      string
	jwtAudience    string
	jwtIssuer      string
	trustHeaders   bool
	allowedDomains []string
	noAuthUID      string
}

func (x *Auth) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "auth-user-header",
			Usage:       "Request header carrying the authenticated user ID",
			Category:    "Authentication",
			Value:       httpctrl.DefaultAuthHeaders.UserID,
			Destination: &x.userHeader,
			Sources:     cli.EnvVars("QOIT_AUTH_USER_HEADER"),
		},
		&cli.StringFlag{
			Name:        "auth-email-header",
			Usage:       "Request header carrying the authenticated user email",
			Category:    "Authentication",
			Value:       httpctrl.DefaultAuthHeaders.Email,
			Destination: &x.emailHeader,
			Sources:     cli.EnvVars("QOIT_AUTH_EMAIL_HEADER"),
		},
		&cli.StringFlag{
			Name:        "auth-name-header",
			Usage:       "Request header carrying the authenticated user name",
			Category:    "Authentication",
			Value:       httpctrl.DefaultAuthHeaders.Name,
			Destination: &x.nameHeader,
			Sources:     cli.EnvVars("QOIT_AUTH_NAME_HEADER"),
		},
		&cli.StringFlag{
			Name:        "auth-token-header",
			Usage:       "Request header carrying the signed identity token",
			Category:    "Authentication",
			Value:       httpctrl.DefaultAuthHeaders.Token,
			Destination: &x.tokenHeader,
			Sources:     cli.EnvVars("QOIT_AUTH_TOKEN_HEADER"),
		},
		&cli.StringFlag{
			Name:        "auth-jwks-url",
			Usage:       "JWKS URL verifying identity tokens (e.g. the Supabase or proxy key set)",
			Category:    "Authentication",
			Destination: &x.jwksURL,
			Sources:     cli.EnvVars("QOIT_AUTH_JWKS_URL"),
		},
		&cli.StringFlag{
			Name:        "auth-jwt-secret",
			Usage:       "HS256 secret verifying identity tokens",
			Category:    "Authentication",
			Destination: &x.jwtSecret,
			Sources:     cli.EnvVars("QOIT_AUTH_JWT_SECRET"),
		},
		&cli.StringFlag{
			Name:        "auth-jwt-audience",
			Usage:       "Required audience of identity tokens",
			Category:    "Authentication",
			Destination: &x.jwtAudience,
			Sources:     cli.EnvVars("QOIT_AUTH_JWT_AUDIENCE"),
		},
		&cli.StringFlag{
			Name:        "auth-jwt-issuer",
			Usage:       "Required issuer of identity tokens",
			Category:    "Authentication",
			Destination: &x.jwtIssuer,
			Sources:     cli.EnvVars("QOIT_AUTH_JWT_ISSUER"),
		},
		&cli.BoolFlag{
			Name:        "auth-trust-headers",
			Usage:       "Trust unsigned identity headers from a proxy that strips them from client requests",
			Category:    "Authentication",
			Destination: &x.trustHeaders,
			Sources:     cli.EnvVars("QOIT_AUTH_TRUST_HEADERS"),
		},
		&cli.StringSliceFlag{
			Name:        "auth-allowed-domain",
			Usage:       "Email domain allowed to own a profile (repeatable, empty allows all)",
			Category:    "Authentication",
			Destination: &x.allowedDomains,
			Sources:     cli.EnvVars("QOIT_AUTH_ALLOWED_DOMAINS"),
		},
		&cli.StringFlag{
			Name:        "no-auth",
			Usage:       "Skip authentication and run as the given user ID (development only). Resolved via Slack when --slack-bot-token is set.",
			Category:    "Authentication",
			Destination: &x.noAuthUID,
			Sources:     cli.EnvVars("QOIT_NO_AUTH"),
		},
	}
}

func (x Auth) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("mode", x.mode()),
		slog.String("jwks-url", x.jwksURL),
		slog.Bool("jwt-secret", x.jwtSecret != ""),
		slog.Any("allowed-domains", x.allowedDomains),
	)
}

// Headers returns the identity headers trusted by the HTTP server
func (x *Auth) Headers() httpctrl.AuthHeaders {
	h := httpctrl.DefaultAuthHeaders
	if x.userHeader != "" {
		h.UserID = x.userHeader
	}
	if x.emailHeader != "" {
		h.Email = x.emailHeader
	}
	if x.nameHeader != "" {
		h.Name = x.nameHeader
	}
	if x.tokenHeader != "" {
		h.Token = x.tokenHeader
	}
	return h
}

func (x *Auth) usesJWT() bool {
	return x.jwksURL != "" || x.jwtSecret != ""
}

func (x *Auth) mode() string {
	switch {
	case x.noAuthUID != "":
		return "no-auth"
	case x.usesJWT():
		return "jwt"
	case x.trustHeaders:
		return "headers"
	default:
		return "none"
	}
}

// IsNoAuthMode returns true if no-auth mode is enabled
func (x *Auth) IsNoAuthMode() bool {
	return x.noAuthUID != ""
}

// Configure returns the use case authenticating owners. In no-auth mode the
// fixed user is looked up in Slack when a bot token is available.
func (x *Auth) Configure(ctx context.Context, slackCfg *Slack) (usecase.AuthUseCaseInterface, error) {
	switch x.mode() {
	case "no-auth":
		return x.configureNoAuth(ctx, slackCfg)
	case "jwt":
		return x.configureJWT(ctx)
	case "headers":
		return usecase.NewHeaderAuthnUseCase(usecase.WithAllowedDomains(x.allowedDomains...)), nil
	default:
		return nil, goerr.Wrap(ErrMissingAuthVerifier, "set --auth-jwks-url, --auth-jwt-secret, --auth-trust-headers or --no-auth")
	}
}

func (x *Auth) configureJWT(ctx context.Context) (usecase.AuthUseCaseInterface, error) {
	if x.jwksURL != "" && x.jwtSecret != "" {
		return nil, goerr.Wrap(ErrConflictingJWTKeys, "use either --auth-jwks-url or --auth-jwt-secret")
	}

	opts := []usecase.JWTAuthnOption{
		usecase.WithJWTAudience(x.jwtAudience),
		usecase.WithJWTIssuer(x.jwtIssuer),
		usecase.WithJWTAllowedDomains(x.allowedDomains...),
	}
	if x.jwksURL != "" {
		keys, err := usecase.NewJWKSet(ctx, x.jwksURL)
		if err != nil {
			return nil, err
		}
		opts = append(opts, usecase.WithJWTKeySet(keys))
	} else {
		opts = append(opts, usecase.WithJWTSecret([]byte(x.jwtSecret)))
	}
	return usecase.NewJWTAuthnUseCase(opts...)
}

func (x *Auth) configureNoAuth(ctx context.Context, slackCfg *Slack) (usecase.AuthUseCaseInterface, error) {
	if slackCfg == nil || !slackCfg.HasBotToken() {
		return usecase.NewNoAuthnUseCase(x.noAuthUID, "", ""), nil
	}

	info, err := slackCfg.GetSlackUserInfo(ctx, x.noAuthUID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve no-auth user", goerr.V("uid", x.noAuthUID))
	}
	return usecase.NewNoAuthnUseCase(info.ID, info.Email, info.Name), nil
}
