package renderer

import "errors"

var (
	ErrAlreadySubscribed = errors.New("renderer: a render handler is already subscribed")
	ErrNilHandler        = errors.New("renderer: nil render handler")
	ErrUnbalancedSample  = errors.New("renderer: unbalanced profiling sample")
	ErrTargetNotAcquired = errors.New("renderer: temporary target not acquired")
)
