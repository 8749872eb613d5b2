package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"github.com/vendops-lab/vigil/pkg/cli/config"
	"github.com/vendops-lab/vigil/pkg/utils/logging"
)

func cmdPolicy() *cli.Command {
	var (
		policyCfg config.Policy
		outages   []string
	)

	flags := joinFlags(
		policyCfg.Flags(),
		[]cli.Flag{
			&cli.StringSliceFlag{
				Name:        "outage",
				Usage:       "Outage duration to price (e.g. 90m, 3h), repeatable",
				Value:       []string{"30m", "1h", "2h", "6h", "24h"},
				Destination: &outages,
			},
		},
	)

	return &cli.Command{
		Name:    "policy",
		Aliases: []string{"p"},
		Usage:   "Validate the penalty policy and print sample amounts",
		Flags:   flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger := logging.From(ctx)
			logger.Info("Checking policy", "policy", policyCfg)

			p, err := policyCfg.Configure()
			if err != nil {
				return err
			}

			fmt.Printf("Base: %s %s, hourly rate: %s, cap: %s\n",
				p.Currency,
				humanize.Comma(p.BaseAmount),
				humanize.Comma(p.HourlyRate),
				humanize.Comma(p.MaxAmount),
			)

			for _, raw := range outages {
				outage, err := time.ParseDuration(raw)
				if err != nil {
					return goerr.Wrap(err, "invalid outage duration", goerr.V("outage", raw))
				}
				fmt.Printf("  outage %-8s -> %s %s\n", raw, p.Currency, humanize.Comma(p.Amount(outage)))
			}

			return nil
		},
	}
}
