//go:build !opencl

package opencl

import "github.com/skarab/awesome-shader-nft/tracer"

// Enumerate opencl devices.
func Devices() ([]DeviceInfo, error) {
	return nil, ErrNotSupported
}

// Create an opencl device matching selector.
func New(selector string) (tracer.Device, error) {
	if _, err := ParseSelector(selector); err != nil {
		return nil, err
	}
	return nil, ErrNotSupported
}
