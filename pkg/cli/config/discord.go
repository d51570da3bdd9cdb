package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/qoit/pkg/service/discord"
	"github.com/urfave/cli/v3"
)

type Discord struct {
	appURL   string
	timeZone string
}

func (x *Discord) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "app-url",
			Usage:       "Public base URL linked from Discord embeds",
			Category:    "Discord",
			Value:       discord.DefaultAppURL,
			Destination: &x.appURL,
			Sources:     cli.EnvVars("QOIT_APP_URL"),
		},
		&cli.StringFlag{
			Name:        "discord-time-zone",
			Usage:       "IANA time zone used to display return times in Discord",
			Category:    "Discord",
			Value:       "UTC",
			Destination: &x.timeZone,
			Sources:     cli.EnvVars("QOIT_DISCORD_TIME_ZONE"),
		},
	}
}

func (x Discord) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("app-url", x.appURL),
		slog.String("time-zone", x.timeZone),
	)
}

// Provider creates the Discord webhook sync provider
func (x *Discord) Provider() (*discord.Provider, error) {
	opts := []discord.Option{}
	if x.appURL != "" {
		opts = append(opts, discord.WithAppURL(x.appURL))
	}
	if x.timeZone != "" {
		loc, err := time.LoadLocation(x.timeZone)
		if err != nil {
			return nil, goerr.Wrap(ErrInvalidTimeZone, err.Error(), goerr.V("time_zone", x.timeZone))
		}
		opts = append(opts, discord.WithLocation(loc))
	}
	return discord.New(opts...), nil
}
