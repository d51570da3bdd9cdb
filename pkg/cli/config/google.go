package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/qoit/pkg/service/gcal"
	"github.com/urfave/cli/v3"
)

// Google holds the OAuth client used to refresh Google Calendar tokens
type Google struct {
	clientID     string
	clientSecret string
	endpoint     string
}

func (x *Google) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "google-client-id",
			Usage:       "Google OAuth client ID",
			Category:    "Google",
			Destination: &x.clientID,
			Sources:     cli.EnvVars("QOIT_GOOGLE_CLIENT_ID"),
		},
		&cli.StringFlag{
			Name:        "google-client-secret",
			Usage:       "Google OAuth client secret",
			Category:    "Google",
			Destination: &x.clientSecret,
			Sources:     cli.EnvVars("QOIT_GOOGLE_CLIENT_SECRET"),
		},
		&cli.StringFlag{
			Name:        "google-calendar-endpoint",
			Usage:       "Google Calendar API endpoint override",
			Category:    "Google",
			Destination: &x.endpoint,
			Sources:     cli.EnvVars("QOIT_GOOGLE_CALENDAR_ENDPOINT"),
		},
	}
}

func (x Google) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("client-id.len", len(x.clientID)),
		slog.Int("client-secret.len", len(x.clientSecret)),
		slog.String("endpoint", x.endpoint),
	)
}

// CanRefresh reports whether expired calendar tokens can be refreshed
func (x *Google) CanRefresh() bool {
	return x.clientID != "" && x.clientSecret != ""
}

// Provider creates the Google Calendar sync provider
func (x *Google) Provider() (*gcal.Provider, error) {
	if (x.clientID == "") != (x.clientSecret == "") {
		return nil, goerr.Wrap(ErrIncompleteGoogle, "set both --google-client-id and --google-client-secret")
	}

	var opts []gcal.Option
	if x.endpoint != "" {
		opts = append(opts, gcal.WithEndpoint(x.endpoint))
	}
	return gcal.New(x.clientID, x.clientSecret, opts...), nil
}
