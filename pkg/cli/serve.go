package cli

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/vendops-lab/vigil/pkg/cli/config"
	server "github.com/vendops-lab/vigil/pkg/controller/http"
	"github.com/vendops-lab/vigil/pkg/domain/interfaces"
	"github.com/vendops-lab/vigil/pkg/repository"
	"github.com/vendops-lab/vigil/pkg/service/notifier"
	"github.com/vendops-lab/vigil/pkg/usecase"
	"github.com/vendops-lab/vigil/pkg/utils/logging"
	"github.com/vendops-lab/vigil/pkg/utils/safe"
)

func cmdServe() *cli.Command {
	var (
		addr          string
		consoleNotify bool
		detectorCfg   config.Detector
		policyCfg     config.Policy
		sentryCfg     config.Sentry
		firestoreCfg  config.Firestore
		registryCfg   config.Registry
	)

	flags := joinFlags(
		[]cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Aliases:     []string{"a"},
				Sources:     cli.EnvVars("VIGIL_ADDR"),
				Usage:       "Listen address (default: 127.0.0.1:8080)",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.BoolFlag{
				Name:        "console-notifier",
				Usage:       "Print incident and penalty events to the console",
				Category:    "Notifier",
				Sources:     cli.EnvVars("VIGIL_CONSOLE_NOTIFIER"),
				Value:       true,
				Destination: &consoleNotify,
			},
		},
		detectorCfg.Flags(),
		policyCfg.Flags(),
		sentryCfg.Flags(),
		firestoreCfg.Flags(),
		registryCfg.Flags(),
	)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Run server",
		Flags:   flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logging.Default().Info("starting server",
				"addr", addr,
				"detector", detectorCfg,
				"policy", policyCfg,
				"sentry", sentryCfg,
				"firestore", firestoreCfg,
				"registry", registryCfg,
			)

			if err := sentryCfg.Configure(); err != nil {
				return err
			}

			detector, err := detectorCfg.Configure()
			if err != nil {
				return err
			}

			penaltyPolicy, err := policyCfg.Configure()
			if err != nil {
				return err
			}

			deviceRegistry, regCloser, err := registryCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer regCloser()

			var repo interfaces.Repository
			if firestoreCfg.IsConfigured() {
				fsRepo, err := firestoreCfg.Configure(ctx)
				if err != nil {
					return err
				}
				defer safe.Close(ctx, fsRepo)
				repo = fsRepo
			} else {
				logging.From(ctx).Warn("Firestore is not configured, using in-memory repository")
				repo = repository.NewMemory()
			}

			notify := notifier.NewDiscardNotifier()
			if consoleNotify {
				notify = notifier.NewConsoleNotifier()
			}

			uc := usecase.New(
				usecase.WithRepository(repo),
				usecase.WithRegistry(deviceRegistry),
				usecase.WithNotifier(notify),
				usecase.WithDetectorConfig(detector),
				usecase.WithPolicy(penaltyPolicy),
			)

			httpServer := http.Server{
				Addr:              addr,
				Handler:           server.New(uc),
				ReadTimeout:       30 * time.Second,
				ReadHeaderTimeout: 10 * time.Second,
				BaseContext: func(l net.Listener) context.Context {
					return ctx
				},
			}

			errCh := make(chan error, 1)
			go func() {
				defer close(errCh)
				if err := httpServer.ListenAndServe(); err != nil {
					errCh <- err
				}
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case <-sigCh:
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return httpServer.Shutdown(ctx)
			}
		},
	}
}
