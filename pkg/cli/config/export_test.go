package config

import "github.com/vendops-lab/vigil/pkg/domain/model/device"

// LoadDevices exports loadDevices for testing
func LoadDevices(path string) ([]*device.Device, error) {
	return loadDevices(path)
}
