package registry

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/vendops-lab/vigil/pkg/domain/interfaces"
	"github.com/vendops-lab/vigil/pkg/domain/model/device"
	"github.com/vendops-lab/vigil/pkg/domain/types"
	"github.com/vendops-lab/vigil/pkg/service/cache"
	"github.com/vendops-lab/vigil/pkg/utils/logging"
)

const DefaultCacheTTL = 5 * time.Minute

// Cached wraps a DeviceRegistry with a read-through cache. Penalty assessment
// hits the registry on every call; the cache keeps repeated lookups for the
// same device from hammering the backing store.
//
// Cache failures degrade to direct registry reads and are logged, never
// surfaced to callers.
type Cached struct {
	backend interfaces.DeviceRegistry
	cache   cache.Cache
	ttl     time.Duration
}

var _ interfaces.DeviceRegistry = &Cached{}

func NewCached(backend interfaces.DeviceRegistry, c cache.Cache, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cached{
		backend: backend,
		cache:   c,
		ttl:     ttl,
	}
}

func deviceKey(deviceID types.DeviceID) string {
	return "device:" + string(deviceID)
}

func (r *Cached) GetDevice(ctx context.Context, deviceID types.DeviceID) (*device.Device, error) {
	logger := logging.From(ctx)

	if raw, err := r.cache.Get(ctx, deviceKey(deviceID)); err == nil {
		var dev device.Device
		if err := json.Unmarshal(raw, &dev); err == nil {
			return &dev, nil
		}
		logger.Warn("broken device cache entry, falling through",
			"device_id", deviceID,
		)
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		logger.Warn("device cache read failed, falling through",
			"device_id", deviceID,
			"error", err,
		)
	}

	dev, err := r.backend.GetDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(dev)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode device for cache")
	}
	if err := r.cache.Set(ctx, deviceKey(deviceID), raw, r.ttl); err != nil {
		logger.Warn("device cache write failed", "device_id", deviceID, "error", err)
	}

	return dev, nil
}

func (r *Cached) GetAssignedDriver(ctx context.Context, deviceID types.DeviceID) (types.DriverID, error) {
	dev, err := r.GetDevice(ctx, deviceID)
	if err != nil {
		return types.EmptyDriverID, err
	}
	if !dev.HasDriver() {
		// The cached copy may predate the assignment. Drop it and ask the
		// backend so assignment changes take effect without waiting for TTL.
		if derr := r.cache.Delete(ctx, deviceKey(deviceID)); derr != nil {
			logging.From(ctx).Warn("device cache invalidation failed",
				"device_id", deviceID,
				"error", derr,
			)
		}
		return r.backend.GetAssignedDriver(ctx, deviceID)
	}
	return dev.DriverID, nil
}

// Invalidate drops the cached entry for a device, e.g. after a registry
// update elsewhere.
func (r *Cached) Invalidate(ctx context.Context, deviceID types.DeviceID) error {
	return r.cache.Delete(ctx, deviceKey(deviceID))
}
