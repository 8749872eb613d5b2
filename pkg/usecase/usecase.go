package usecase

import (
	"time"

	"github.com/vendops-lab/vigil/pkg/domain/interfaces"
	"github.com/vendops-lab/vigil/pkg/repository"
	"github.com/vendops-lab/vigil/pkg/service/notifier"
	"github.com/vendops-lab/vigil/pkg/service/policy"
)

// DetectorConfig holds the zero-sales thresholds. Both come from
// configuration, never constants in code.
type DetectorConfig struct {
	// SilenceThreshold is the silence duration after which a staging entry
	// is opened.
	SilenceThreshold time.Duration
	// PromotionThreshold is the silence duration after which an open entry
	// is promoted to an incident. Must be >= SilenceThreshold.
	PromotionThreshold time.Duration
}

func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		SilenceThreshold:   30 * time.Minute,
		PromotionThreshold: 60 * time.Minute,
	}
}

type UseCases struct {
	repository interfaces.Repository
	registry   interfaces.DeviceRegistry
	notifier   interfaces.Notifier

	detectorCfg DetectorConfig
	policy      policy.Policy
}

var _ interfaces.TelemetryUsecases = &UseCases{}
var _ interfaces.IncidentUsecases = &UseCases{}
var _ interfaces.PenaltyUsecases = &UseCases{}

type Option func(*UseCases)

func WithRepository(repo interfaces.Repository) Option {
	return func(u *UseCases) {
		u.repository = repo
	}
}

func WithRegistry(registry interfaces.DeviceRegistry) Option {
	return func(u *UseCases) {
		u.registry = registry
	}
}

func WithNotifier(n interfaces.Notifier) Option {
	return func(u *UseCases) {
		u.notifier = n
	}
}

func WithDetectorConfig(cfg DetectorConfig) Option {
	return func(u *UseCases) {
		u.detectorCfg = cfg
	}
}

func WithPolicy(p policy.Policy) Option {
	return func(u *UseCases) {
		u.policy = p
	}
}

func New(opts ...Option) *UseCases {
	u := &UseCases{
		repository:  repository.NewMemory(),
		notifier:    notifier.NewDiscardNotifier(), // Default to discard implementation
		detectorCfg: DefaultDetectorConfig(),
		policy:      policy.Default(),
	}

	for _, opt := range opts {
		opt(u)
	}

	return u
}
