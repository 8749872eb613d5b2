package config

import (
	"log/slog"

	"github.com/urfave/cli/v3"
	"github.com/vendops-lab/vigil/pkg/service/policy"
)

type Policy struct {
	filePath string
}

func (x *Policy) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "policy-file",
			Usage:       "Path to penalty policy YAML file (built-in defaults if omitted)",
			Category:    "Policy",
			Sources:     cli.EnvVars("VIGIL_POLICY_FILE"),
			Destination: &x.filePath,
		},
	}
}

func (x Policy) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("file", x.filePath),
	)
}

func (x *Policy) Configure() (policy.Policy, error) {
	if x.filePath == "" {
		return policy.Default(), nil
	}
	return policy.Load(x.filePath)
}
