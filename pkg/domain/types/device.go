package types

import (
	"github.com/m-mizutani/goerr/v2"
)

// DeviceID is the registry-assigned identifier of a vending machine.
// Devices are owned by the device registry; the core only references them.
type DeviceID string

func (x DeviceID) String() string {
	return string(x)
}

func (x DeviceID) Validate() error {
	if x == EmptyDeviceID {
		return goerr.New("empty device ID")
	}
	return nil
}

const (
	EmptyDeviceID DeviceID = ""
)

// DriverID identifies the driver/operator responsible for restocking a device.
type DriverID string

func (x DriverID) String() string {
	return string(x)
}

const (
	EmptyDriverID DriverID = ""
)

// OperatorID identifies an operations staff member acting on incidents.
type OperatorID string

func (x OperatorID) String() string {
	return string(x)
}

const (
	EmptyOperatorID OperatorID = ""
)
