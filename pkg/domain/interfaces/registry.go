package interfaces

import (
	"context"

	"github.com/vendops-lab/vigil/pkg/domain/model/device"
	"github.com/vendops-lab/vigil/pkg/domain/types"
)

// DeviceRegistry is the read-only view of the device/driver registry. The
// registry owns device metadata and driver assignment; the core only
// consults it when assessing penalties and filtering listings.
type DeviceRegistry interface {
	GetDevice(ctx context.Context, deviceID types.DeviceID) (*device.Device, error)
	// GetAssignedDriver resolves the driver currently responsible for the
	// device. Not-found if the device does not exist or has no driver.
	GetAssignedDriver(ctx context.Context, deviceID types.DeviceID) (types.DriverID, error)
}
