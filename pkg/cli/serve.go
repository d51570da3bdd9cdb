package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	httpctrl "github.com/secmon-lab/qoit/pkg/controller/http"
	"github.com/secmon-lab/qoit/pkg/service/worker"
	"github.com/secmon-lab/qoit/pkg/usecase"
	"github.com/secmon-lab/qoit/pkg/utils/async"
	"github.com/secmon-lab/qoit/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 10 * time.Second

func cmdServe() *cli.Command {
	var addr string
	be := backend{withAuth: true}

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("QOIT_ADDR"),
			Destination: &addr,
		},
	}
	flags = append(flags, be.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			authUC, err := be.authCfg.Configure(ctx, &be.slack)
			if err != nil {
				return goerr.Wrap(err, "failed to configure authentication")
			}
			if be.authCfg.IsNoAuthMode() {
				logging.Default().Warn("Running in no-auth mode (development only)", "auth", be.authCfg)
			} else {
				logging.Default().Info("Authentication enabled", "auth", be.authCfg)
			}

			uc, closer, err := be.build(ctx, usecase.WithAuth(authUC))
			if err != nil {
				return err
			}
			defer closer()

			expiryWorker := worker.NewExpiryWorker(uc.Status, be.sync.ExpiryInterval())
			if err := expiryWorker.Start(ctx); err != nil {
				return goerr.Wrap(err, "failed to start expiry worker")
			}

			background := &async.Group{}
			handler := httpctrl.New(uc,
				httpctrl.WithAuth(authUC),
				httpctrl.WithAuthHeaders(be.authCfg.Headers()),
				httpctrl.WithBackground(background),
			)
			server := &http.Server{
				Addr:              addr,
				Handler:           handler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				expiryWorker.Stop()
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				// Stop the sweep first so no new syncs start during shutdown
				expiryWorker.Stop()

				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}
				if err := handler.Wait(shutdownCtx); err != nil {
					logging.Default().Warn("Background syncs still running at shutdown", "error", err.Error())
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
