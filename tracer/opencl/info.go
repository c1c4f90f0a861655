package opencl

import (
	"fmt"
	"strconv"
	"strings"
)

// Information about an opencl device.
type DeviceInfo struct {
	Platform string
	Name     string
	Type     string

	ComputeUnits int
	ClockSpeed   int

	// Speed estimate in GFlops.
	Speed uint32
}

// Implements Stringer.
func (d DeviceInfo) String() string {
	return fmt.Sprintf(
		"%s (%s, %s): %d computation units, %d Mhz clock, %d GFlops approximate speed",
		d.Name,
		d.Type,
		d.Platform,
		d.ComputeUnits,
		d.ClockSpeed,
		d.Speed,
	)
}

// A device selector parsed from strings like "opencl", "opencl:1" or
// "opencl:nvidia". An index selects the n-th device in the Devices() list;
// any other value selects the first device whose name contains it.
type Selector struct {
	Index  int
	Filter string
}

// Parse a device selector.
func ParseSelector(value string) (Selector, error) {
	name, arg, _ := strings.Cut(value, ":")
	if name != "opencl" {
		return Selector{}, fmt.Errorf("%w: %q", ErrInvalidSelector, value)
	}

	sel := Selector{Index: -1}
	if arg == "" {
		return sel, nil
	}
	if idx, err := strconv.Atoi(arg); err == nil {
		if idx < 0 {
			return Selector{}, fmt.Errorf("%w: negative index in %q", ErrInvalidSelector, value)
		}
		sel.Index = idx
		return sel, nil
	}
	sel.Filter = strings.ToLower(arg)
	return sel, nil
}

// Check whether the device at position idx in the device list matches.
func (s Selector) Match(idx int, info DeviceInfo) bool {
	switch {
	case s.Index >= 0:
		return idx == s.Index
	case s.Filter != "":
		return strings.Contains(strings.ToLower(info.Name), s.Filter)
	}
	return true
}
