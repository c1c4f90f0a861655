package generator

import "errors"

var (
	ErrSessionClosed = errors.New("generator: session is closed")
	ErrParamCount    = errors.New("generator: parameter vector length does not match capacity")
	ErrSlotIdentity  = errors.New("generator: bounding volume slot identity changed")
	ErrNoDevice      = errors.New("generator: pipeline has no device")
)
