package device

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/vendops-lab/vigil/pkg/domain/types"
)

// Device is a vending machine as the device registry describes it. The core
// never mutates devices; staging entries and incidents reference them by ID.
type Device struct {
	ID       types.DeviceID `json:"id"`
	Name     string         `json:"name"`
	Active   bool           `json:"active"`
	DriverID types.DriverID `json:"driver_id,omitempty"`

	// UnitPrice is the configured sale price in minor currency units.
	UnitPrice int64 `json:"unit_price"`
}

func (x *Device) Validate() error {
	if err := x.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid device ID")
	}
	if x.Name == "" {
		return goerr.New("device name is required", goerr.V("device_id", x.ID))
	}
	return nil
}

// HasDriver reports whether a driver is currently assigned. Penalties can
// only be assessed for devices with an assigned driver.
func (x *Device) HasDriver() bool {
	return x.DriverID != types.EmptyDriverID
}
