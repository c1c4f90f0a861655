package opencl

import "errors"

var (
	ErrNotSupported    = errors.New("opencl device: support is not enabled; rebuild with -tags opencl")
	ErrNoDevices       = errors.New("opencl device: no suitable devices found")
	ErrProgramBuild    = errors.New("opencl device: could not build program")
	ErrNotInitialized  = errors.New("opencl device: device not initialized")
	ErrInvalidSelector = errors.New("opencl device: invalid device selector")
)
