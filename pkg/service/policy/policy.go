package policy

import (
	"os"
	"path/filepath"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"
)

// Policy maps a confirmed outage to a penalty amount. Amounts are in minor
// currency units. The mapping is deployment configuration, not code: load
// it from a YAML file or tune the fields via flags.
type Policy struct {
	// BaseAmount is charged for any penalized outage.
	BaseAmount int64 `yaml:"base_amount"`
	// HourlyRate is charged per started hour of outage beyond the first.
	HourlyRate int64 `yaml:"hourly_rate"`
	// MaxAmount caps the total. Zero means no cap.
	MaxAmount int64  `yaml:"max_amount"`
	Currency  string `yaml:"currency"`
}

func Default() Policy {
	return Policy{
		BaseAmount: 5000,
		HourlyRate: 1000,
		MaxAmount:  50000,
		Currency:   "JPY",
	}
}

func Load(path string) (Policy, error) {
	p := Default()

	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return p, goerr.Wrap(err, "failed to read penalty policy file", goerr.V("path", path))
	}
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return p, goerr.Wrap(err, "failed to parse penalty policy file", goerr.V("path", path))
	}
	if err := p.Validate(); err != nil {
		return p, goerr.Wrap(err, "invalid penalty policy", goerr.V("path", path))
	}
	return p, nil
}

func (p *Policy) Validate() error {
	if p.BaseAmount < 0 {
		return goerr.New("base_amount must not be negative", goerr.V("base_amount", p.BaseAmount))
	}
	if p.HourlyRate < 0 {
		return goerr.New("hourly_rate must not be negative", goerr.V("hourly_rate", p.HourlyRate))
	}
	if p.MaxAmount < 0 {
		return goerr.New("max_amount must not be negative", goerr.V("max_amount", p.MaxAmount))
	}
	if p.Currency == "" {
		return goerr.New("currency is required")
	}
	return nil
}

// Amount computes the penalty for an outage of the given duration. The
// first hour is covered by the base amount; every further started hour
// adds the hourly rate.
func (p *Policy) Amount(outage time.Duration) int64 {
	if outage < 0 {
		outage = 0
	}

	amount := p.BaseAmount
	if outage > time.Hour {
		extra := outage - time.Hour
		hours := int64(extra / time.Hour)
		if extra%time.Hour > 0 {
			hours++
		}
		amount += hours * p.HourlyRate
	}

	if p.MaxAmount > 0 && amount > p.MaxAmount {
		amount = p.MaxAmount
	}
	return amount
}
