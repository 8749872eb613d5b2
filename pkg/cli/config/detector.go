package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"github.com/vendops-lab/vigil/pkg/usecase"
)

type Detector struct {
	silenceThreshold   time.Duration
	promotionThreshold time.Duration
}

func (x *Detector) Flags() []cli.Flag {
	defaults := usecase.DefaultDetectorConfig()
	return []cli.Flag{
		&cli.DurationFlag{
			Name:        "silence-threshold",
			Usage:       "Silence duration before a device is staged as suspicious",
			Category:    "Detector",
			Sources:     cli.EnvVars("VIGIL_SILENCE_THRESHOLD"),
			Value:       defaults.SilenceThreshold,
			Destination: &x.silenceThreshold,
		},
		&cli.DurationFlag{
			Name:        "promotion-threshold",
			Usage:       "Silence duration before a staged device is promoted to an incident",
			Category:    "Detector",
			Sources:     cli.EnvVars("VIGIL_PROMOTION_THRESHOLD"),
			Value:       defaults.PromotionThreshold,
			Destination: &x.promotionThreshold,
		},
	}
}

func (x Detector) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Duration("silence_threshold", x.silenceThreshold),
		slog.Duration("promotion_threshold", x.promotionThreshold),
	)
}

func (x *Detector) Configure() (usecase.DetectorConfig, error) {
	cfg := usecase.DetectorConfig{
		SilenceThreshold:   x.silenceThreshold,
		PromotionThreshold: x.promotionThreshold,
	}
	if cfg.SilenceThreshold <= 0 {
		return cfg, goerr.New("silence threshold must be positive", goerr.V("threshold", cfg.SilenceThreshold))
	}
	if cfg.PromotionThreshold <= cfg.SilenceThreshold {
		return cfg, goerr.New("promotion threshold must exceed silence threshold",
			goerr.V("silence", cfg.SilenceThreshold),
			goerr.V("promotion", cfg.PromotionThreshold),
		)
	}
	return cfg, nil
}
