package cli

import (
	"context"
	"encoding/json"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"github.com/vendops-lab/vigil/pkg/cli/config"
	"github.com/vendops-lab/vigil/pkg/domain/interfaces"
	"github.com/vendops-lab/vigil/pkg/domain/types"
	"github.com/vendops-lab/vigil/pkg/repository"
	"github.com/vendops-lab/vigil/pkg/service/notifier"
	"github.com/vendops-lab/vigil/pkg/usecase"
	"github.com/vendops-lab/vigil/pkg/utils/logging"
	"github.com/vendops-lab/vigil/pkg/utils/safe"
)

func cmdReport() *cli.Command {
	var (
		deviceID     string
		firestoreCfg config.Firestore
	)

	flags := joinFlags(
		[]cli.Flag{
			&cli.StringFlag{
				Name:        "device-id",
				Aliases:     []string{"d"},
				Usage:       "Device to open a manual incident for",
				Required:    true,
				Destination: &deviceID,
			},
		},
		firestoreCfg.Flags(),
	)

	return &cli.Command{
		Name:  "report",
		Usage: "Open a manual incident for a device",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var repo interfaces.Repository
			if firestoreCfg.IsConfigured() {
				fsRepo, err := firestoreCfg.Configure(ctx)
				if err != nil {
					return err
				}
				defer safe.Close(ctx, fsRepo)
				repo = fsRepo
			} else {
				logging.From(ctx).Warn("Firestore is not configured, the incident will not be persisted")
				repo = repository.NewMemory()
			}

			uc := usecase.New(
				usecase.WithRepository(repo),
				usecase.WithNotifier(notifier.NewConsoleNotifier()),
			)

			inc, err := uc.ReportIncident(ctx, types.DeviceID(deviceID))
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(inc); err != nil {
				return goerr.Wrap(err, "failed to encode incident")
			}
			return nil
		},
	}
}
