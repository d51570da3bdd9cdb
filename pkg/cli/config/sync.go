package config

import (
	"log/slog"
	"time"

	"github.com/secmon-lab/qoit/pkg/usecase"
	"github.com/urfave/cli/v3"
)

const DefaultExpiryInterval = time.Minute

type Sync struct {
	timeout        time.Duration
	expiryInterval time.Duration
}

func (x *Sync) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:        "sync-timeout",
			Usage:       "Time limit of a single provider sync",
			Category:    "Sync",
			Value:       usecase.DefaultSyncTimeout,
			Destination: &x.timeout,
			Sources:     cli.EnvVars("QOIT_SYNC_TIMEOUT"),
		},
		&cli.DurationFlag{
			Name:        "expiry-interval",
			Usage:       "Interval of the sweep returning past-due profiles to available",
			Category:    "Sync",
			Value:       DefaultExpiryInterval,
			Destination: &x.expiryInterval,
			Sources:     cli.EnvVars("QOIT_EXPIRY_INTERVAL"),
		},
	}
}

func (x Sync) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Duration("timeout", x.timeout),
		slog.Duration("expiry-interval", x.expiryInterval),
	)
}

func (x *Sync) Timeout() time.Duration {
	if x.timeout <= 0 {
		return usecase.DefaultSyncTimeout
	}
	return x.timeout
}

func (x *Sync) ExpiryInterval() time.Duration {
	if x.expiryInterval <= 0 {
		return DefaultExpiryInterval
	}
	return x.expiryInterval
}
