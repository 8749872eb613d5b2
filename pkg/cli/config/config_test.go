package config_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/vendops-lab/vigil/pkg/cli/config"
)

func TestDetector_Configure(t *testing.T) {
	t.Run("rejects zero thresholds", func(t *testing.T) {
		cfg := &config.Detector{}
		_, err := cfg.Configure()
		gt.Error(t, err)
	})
}

func TestPolicy_Configure(t *testing.T) {
	t.Run("returns built-in defaults without a file", func(t *testing.T) {
		cfg := &config.Policy{}
		p := gt.R1(cfg.Configure()).NoError(t)
		gt.Equal(t, int64(5000), p.BaseAmount)
		gt.Equal(t, "JPY", p.Currency)
	})
}

func TestFirestore_IsConfigured(t *testing.T) {
	t.Run("returns false without project ID", func(t *testing.T) {
		cfg := &config.Firestore{}
		gt.False(t, cfg.IsConfigured())
	})
}
