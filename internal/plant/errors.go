package plant

import "errors"

// Environment errors.
var (
	// ErrClosed is returned by Reset or Step after Close.
	ErrClosed = errors.New("plant: environment closed")

	// ErrNotReset is returned by Step before the first Reset.
	ErrNotReset = errors.New("plant: step before reset")

	// ErrHardwareFault indicates the plant reported an unusable state.
	ErrHardwareFault = errors.New("plant: hardware fault")

	// ErrPacingDeadline is returned by Step when waiting out the tick would
	// pass the context deadline.
	ErrPacingDeadline = errors.New("plant: next tick is past the deadline")
)
