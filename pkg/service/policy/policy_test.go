package policy_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/vendops-lab/vigil/pkg/service/policy"
)

func TestAmount(t *testing.T) {
	p := policy.Policy{
		BaseAmount: 5000,
		HourlyRate: 1000,
		MaxAmount:  50000,
		Currency:   "JPY",
	}

	cases := []struct {
		name   string
		outage time.Duration
		want   int64
	}{
		{"zero", 0, 5000},
		{"within first hour", 30 * time.Minute, 5000},
		{"exactly one hour", time.Hour, 5000},
		{"90 minutes starts second hour", 90 * time.Minute, 6000},
		{"exactly two hours", 2 * time.Hour, 6000},
		{"just over two hours", 2*time.Hour + time.Second, 7000},
		{"capped at max", 100 * time.Hour, 50000},
		{"negative treated as zero", -time.Hour, 5000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Equal(t, p.Amount(tc.outage), tc.want)
		})
	}
}

func TestAmountWithoutCap(t *testing.T) {
	p := policy.Policy{
		BaseAmount: 1000,
		HourlyRate: 500,
		Currency:   "USD",
	}
	gt.Equal(t, p.Amount(10*time.Hour), int64(1000+9*500))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yml")
	body := []byte(`
base_amount: 2000
hourly_rate: 750
max_amount: 20000
currency: EUR
`)
	gt.NoError(t, os.WriteFile(path, body, 0600))

	p := gt.R1(policy.Load(path)).NoError(t)
	gt.Equal(t, p.BaseAmount, int64(2000))
	gt.Equal(t, p.HourlyRate, int64(750))
	gt.Equal(t, p.MaxAmount, int64(20000))
	gt.Equal(t, p.Currency, "EUR")

	t.Run("missing file", func(t *testing.T) {
		_, err := policy.Load(filepath.Join(dir, "missing.yml"))
		gt.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.yml")
		gt.NoError(t, os.WriteFile(bad, []byte("base_amount: [broken"), 0600))
		_, err := policy.Load(bad)
		gt.Error(t, err)
	})

	t.Run("negative amount rejected", func(t *testing.T) {
		neg := filepath.Join(dir, "neg.yml")
		gt.NoError(t, os.WriteFile(neg, []byte("base_amount: -1\ncurrency: JPY\n"), 0600))
		_, err := policy.Load(neg)
		gt.Error(t, err)
	})
}

func TestDefault(t *testing.T) {
	p := policy.Default()
	gt.NoError(t, p.Validate())
	gt.True(t, p.BaseAmount > 0)
	gt.NotEqual(t, p.Currency, "")
}
