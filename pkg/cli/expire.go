package cli

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/qoit/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// cmdExpire runs one expiry sweep, e.g. from a scheduled job
func cmdExpire() *cli.Command {
	var be backend

	return &cli.Command{
		Name:  "expire",
		Usage: "Return every profile whose back-at time has passed to available",
		Flags: be.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, closer, err := be.build(ctx)
			if err != nil {
				return err
			}
			defer closer()

			start := time.Now()
			count, err := uc.Status.ExpireDue(ctx, start)
			if err != nil {
				return goerr.Wrap(err, "failed to expire statuses")
			}

			logging.Default().Info("Expiry sweep completed",
				"expired", count,
				"duration", time.Since(start).String())
			return nil
		},
	}
}
