//go:build opencl

package opencl

import (
	"fmt"
	"strings"

	"github.com/jgillich/go-opencl/cl"
)

func deviceTypeName(dt cl.DeviceType) string {
	switch {
	case dt&cl.DeviceTypeGPU != 0:
		return "GPU"
	case dt&cl.DeviceTypeCPU != 0:
		return "CPU"
	}
	return "Other"
}

type platformDevice struct {
	info   DeviceInfo
	device *cl.Device
}

func enumerate() ([]platformDevice, error) {
	platforms, err := cl.GetPlatforms()
	if err != nil {
		msg := "opencl device: querying platforms"
		if strings.Contains(err.Error(), "-1001") {
			msg += ": no ICD loader reported any platforms"
		}
		return nil, fmt.Errorf("%s: %w", msg, err)
	}

	var out []platformDevice
	for _, p := range platforms {
		devices, err := p.GetDevices(cl.DeviceTypeAll)
		if err != nil && err != cl.ErrDeviceNotFound {
			continue
		}
		for _, d := range devices {
			compUnits := d.MaxComputeUnits()
			clockSpeed := d.MaxClockFrequency()
			out = append(out, platformDevice{
				device: d,
				info: DeviceInfo{
					Platform:     p.Name(),
					Name:         d.Name(),
					Type:         deviceTypeName(d.Type()),
					ComputeUnits: compUnits,
					ClockSpeed:   clockSpeed,
					// compute units * 2ops/cycle * clock speed
					Speed: uint32(compUnits * clockSpeed / 1000),
				},
			})
		}
	}
	return out, nil
}

// Enumerate opencl devices.
func Devices() ([]DeviceInfo, error) {
	devices, err := enumerate()
	if err != nil {
		return nil, err
	}
	out := make([]DeviceInfo, len(devices))
	for idx, d := range devices {
		out[idx] = d.info
	}
	return out, nil
}

// Pick the device matching sel. GPU devices are preferred when the selector
// does not name a specific device.
func selectDevice(sel Selector) (platformDevice, error) {
	devices, err := enumerate()
	if err != nil {
		return platformDevice{}, err
	}

	var fallback *platformDevice
	for idx := range devices {
		if !sel.Match(idx, devices[idx].info) {
			continue
		}
		if devices[idx].info.Type == "GPU" || sel.Index >= 0 {
			return devices[idx], nil
		}
		if fallback == nil {
			fallback = &devices[idx]
		}
	}
	if fallback == nil {
		return platformDevice{}, ErrNoDevices
	}
	return *fallback, nil
}
