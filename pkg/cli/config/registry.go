package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"github.com/vendops-lab/vigil/pkg/domain/interfaces"
	"github.com/vendops-lab/vigil/pkg/domain/model/device"
	"github.com/vendops-lab/vigil/pkg/domain/types"
	"github.com/vendops-lab/vigil/pkg/service/cache"
	"github.com/vendops-lab/vigil/pkg/service/registry"
	"github.com/vendops-lab/vigil/pkg/utils/logging"
	"gopkg.in/yaml.v3"
)

type Registry struct {
	devicesFile string
	redisAddr   string
	redisPasswd string
	redisDB     int
	cacheTTL    time.Duration
}

func (x *Registry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "devices-file",
			Usage:       "Path to device registry YAML file",
			Category:    "Registry",
			Sources:     cli.EnvVars("VIGIL_DEVICES_FILE"),
			Destination: &x.devicesFile,
		},
		&cli.StringFlag{
			Name:        "redis-addr",
			Usage:       "Redis address for the registry cache (in-memory cache if omitted)",
			Category:    "Registry",
			Sources:     cli.EnvVars("VIGIL_REDIS_ADDR"),
			Destination: &x.redisAddr,
		},
		&cli.StringFlag{
			Name:        "redis-password",
			Usage:       "Redis password",
			Category:    "Registry",
			Sources:     cli.EnvVars("VIGIL_REDIS_PASSWORD"),
			Destination: &x.redisPasswd,
		},
		&cli.IntFlag{
			Name:        "redis-db",
			Usage:       "Redis database number",
			Category:    "Registry",
			Sources:     cli.EnvVars("VIGIL_REDIS_DB"),
			Destination: &x.redisDB,
		},
		&cli.DurationFlag{
			Name:        "registry-cache-ttl",
			Usage:       "TTL for cached registry lookups",
			Category:    "Registry",
			Sources:     cli.EnvVars("VIGIL_REGISTRY_CACHE_TTL"),
			Value:       registry.DefaultCacheTTL,
			Destination: &x.cacheTTL,
		},
	}
}

func (x Registry) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("devices_file", x.devicesFile),
		slog.String("redis_addr", x.redisAddr),
		slog.Int("redis_db", x.redisDB),
		slog.Duration("cache_ttl", x.cacheTTL),
	)
}

type deviceRecord struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	Active    bool   `yaml:"active"`
	DriverID  string `yaml:"driver_id"`
	UnitPrice int64  `yaml:"unit_price"`
}

type devicesFile struct {
	Devices []deviceRecord `yaml:"devices"`
}

func loadDevices(path string) ([]*device.Device, error) {
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read devices file", goerr.V("path", path))
	}

	var file devicesFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse devices file", goerr.V("path", path))
	}

	devices := make([]*device.Device, 0, len(file.Devices))
	for _, rec := range file.Devices {
		dev := &device.Device{
			ID:        types.DeviceID(rec.ID),
			Name:      rec.Name,
			Active:    rec.Active,
			DriverID:  types.DriverID(rec.DriverID),
			UnitPrice: rec.UnitPrice,
		}
		if err := dev.Validate(); err != nil {
			return nil, goerr.Wrap(err, "invalid device in devices file", goerr.V("path", path))
		}
		devices = append(devices, dev)
	}

	return devices, nil
}

// Configure builds the device registry. The returned closer releases the
// redis connection when one is used.
func (x *Registry) Configure(ctx context.Context) (interfaces.DeviceRegistry, func(), error) {
	closer := func() {}

	var devices []*device.Device
	if x.devicesFile != "" {
		loaded, err := loadDevices(x.devicesFile)
		if err != nil {
			return nil, closer, err
		}
		devices = loaded
	}

	backend := registry.NewMemory(devices...)

	var registryCache cache.Cache
	if x.redisAddr != "" {
		redisCache, err := cache.NewRedis(ctx, cache.RedisConfig{
			Addr:     x.redisAddr,
			Password: x.redisPasswd,
			DB:       x.redisDB,
		})
		if err != nil {
			return nil, closer, err
		}
		registryCache = redisCache
		closer = func() {
			if err := redisCache.Close(); err != nil {
				logging.Default().Warn("failed to close redis connection", "error", err)
			}
		}
	} else {
		registryCache = cache.NewMemory()
	}

	return registry.NewCached(backend, registryCache, x.cacheTTL), closer, nil
}
