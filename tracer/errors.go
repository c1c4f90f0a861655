package tracer

import "errors"

var (
	ErrDeviceClosed     = errors.New("tracer: device is closed")
	ErrResourceReleased = errors.New("tracer: resource has been released")
	ErrSizeMismatch     = errors.New("tracer: data size does not match resource size")
	ErrForeignResource  = errors.New("tracer: resource belongs to another device")
	ErrInvalidArgs      = errors.New("tracer: invalid kernel arguments")
	ErrUnknownPass      = errors.New("tracer: unknown ray tracing pass")
)
