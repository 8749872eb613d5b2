package registry

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/vendops-lab/vigil/pkg/domain/interfaces"
	"github.com/vendops-lab/vigil/pkg/domain/model/device"
	"github.com/vendops-lab/vigil/pkg/domain/model/errs"
	"github.com/vendops-lab/vigil/pkg/domain/types"
)

// Memory is an in-process device registry seeded at startup. It serves as the
// default registry for single-node deployments and for tests.
type Memory struct {
	mu      sync.RWMutex
	devices map[types.DeviceID]*device.Device
	eb      *goerr.Builder
}

var _ interfaces.DeviceRegistry = &Memory{}

func NewMemory(devices ...*device.Device) *Memory {
	r := &Memory{
		devices: make(map[types.DeviceID]*device.Device),
		eb:      goerr.NewBuilder(goerr.TV(errs.RepositoryKey, "memory_registry")),
	}
	for _, dev := range devices {
		r.devices[dev.ID] = dev
	}
	return r
}

// Register adds or replaces a device entry.
func (r *Memory) Register(dev *device.Device) error {
	if err := dev.Validate(); err != nil {
		return goerr.Wrap(err, "invalid device", goerr.T(errs.TagValidation))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *dev
	r.devices[dev.ID] = &copied
	return nil
}

func (r *Memory) GetDevice(ctx context.Context, deviceID types.DeviceID) (*device.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dev, ok := r.devices[deviceID]
	if !ok {
		return nil, r.eb.New("device not found",
			goerr.T(errs.TagNotFound),
			goerr.TV(errs.DeviceIDKey, deviceID),
		)
	}
	copied := *dev
	return &copied, nil
}

func (r *Memory) GetAssignedDriver(ctx context.Context, deviceID types.DeviceID) (types.DriverID, error) {
	dev, err := r.GetDevice(ctx, deviceID)
	if err != nil {
		return types.EmptyDriverID, err
	}
	if !dev.HasDriver() {
		return types.EmptyDriverID, r.eb.New("no driver assigned to device",
			goerr.T(errs.TagNotFound),
			goerr.TV(errs.DeviceIDKey, deviceID),
		)
	}
	return dev.DriverID, nil
}
