package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/qoit/pkg/cli/config"
	"github.com/secmon-lab/qoit/pkg/domain/interfaces"
	"github.com/secmon-lab/qoit/pkg/usecase"
	"github.com/secmon-lab/qoit/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// backend holds the configuration shared by commands that run use cases
type backend struct {
	repo     config.Repository
	status   config.StatusDefaults
	sync     config.Sync
	slack    config.Slack
	google   config.Google
	discord  config.Discord
	authCfg  config.Auth
	withAuth bool
}

func (x *backend) Flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, x.repo.Flags()...)
	flags = append(flags, x.status.Flags()...)
	flags = append(flags, x.sync.Flags()...)
	flags = append(flags, x.slack.Flags()...)
	flags = append(flags, x.google.Flags()...)
	flags = append(flags, x.discord.Flags()...)
	if x.withAuth {
		flags = append(flags, x.authCfg.Flags()...)
	}
	return flags
}

func (x *backend) providers() ([]interfaces.SyncProvider, error) {
	gcalProvider, err := x.google.Provider()
	if err != nil {
		return nil, err
	}
	if !x.google.CanRefresh() {
		logging.Default().Warn("Google OAuth client not configured, expired calendar tokens cannot be refreshed")
	}

	discordProvider, err := x.discord.Provider()
	if err != nil {
		return nil, err
	}

	return []interfaces.SyncProvider{
		x.slack.Provider(),
		gcalProvider,
		discordProvider,
	}, nil
}

// build opens the repository and assembles the use cases. The returned
// function releases both.
func (x *backend) build(ctx context.Context, opts ...usecase.Option) (*usecase.UseCases, func(), error) {
	repo, err := x.repo.Configure(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to initialize repository")
	}
	closeRepo := func() {
		if err := repo.Close(); err != nil {
			logging.Default().Error("failed to close repository", "error", err.Error())
		}
	}

	defaults, err := x.status.Configure()
	if err != nil {
		closeRepo()
		return nil, nil, goerr.Wrap(err, "failed to load status defaults")
	}

	providers, err := x.providers()
	if err != nil {
		closeRepo()
		return nil, nil, goerr.Wrap(err, "failed to configure sync providers")
	}

	ucOpts := []usecase.Option{
		usecase.WithSyncProviders(providers...),
		usecase.WithSyncTimeout(x.sync.Timeout()),
		usecase.WithStatusDefaults(defaults),
	}
	uc := usecase.New(repo, append(ucOpts, opts...)...)

	logging.Default().Info("Use cases configured",
		"sync", x.sync,
		"slack", x.slack,
		"google", x.google,
		"discord", x.discord,
		"status_defaults", x.status,
	)

	return uc, func() {
		uc.Close()
		closeRepo()
	}, nil
}
