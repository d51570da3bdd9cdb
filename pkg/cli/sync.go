package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/qoit/pkg/domain/types"
	"github.com/secmon-lab/qoit/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// cmdSync pushes the stored status of a user to every connected integration
func cmdSync() *cli.Command {
	var userID string
	var be backend

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user-id",
			Usage:       "Owner whose status is pushed",
			Required:    true,
			Destination: &userID,
		},
	}
	flags = append(flags, be.Flags()...)

	return &cli.Command{
		Name:  "sync",
		Usage: "Push the current status of a user to their integrations",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, closer, err := be.build(ctx)
			if err != nil {
				return err
			}
			defer closer()

			res, err := uc.Integration.SyncNow(ctx, userID)
			if err != nil {
				return goerr.Wrap(err, "failed to sync", goerr.V("user_id", userID))
			}

			printSyncResult(color.Output, res)
			if !res.Success {
				return goerr.New("some integrations failed to sync", goerr.V("failed", res.Synced.Failed()))
			}
			return nil
		},
	}
}

func printSyncResult(w io.Writer, res *usecase.ManualSyncResult) {
	ok := color.New(color.FgGreen, color.Bold).SprintFunc()
	ng := color.New(color.FgRed, color.Bold).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	if res.IntegrationCount == 0 {
		_, _ = fmt.Fprintln(w, faint("No active integrations"))
		return
	}

	for _, t := range types.AllIntegrationTypes() {
		r, found := res.Synced[t]
		if !found {
			continue
		}
		if r.Success {
			_, _ = fmt.Fprintf(w, "%s %s\n", ok("✓"), t)
		} else {
			_, _ = fmt.Fprintf(w, "%s %s %s\n", ng("✗"), t, faint(r.Error))
		}
	}
}
