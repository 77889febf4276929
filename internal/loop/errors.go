package loop

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyRun = errors.New("loop: scheduler already run")

	// ErrStrategyPanic wraps a panic recovered from Strategy.Compute.
	ErrStrategyPanic = errors.New("loop: strategy panicked")
)

// Stage names the collaborator that failed.
type Stage string

const (
	StageOpen     Stage = "open"
	StageReset    Stage = "reset"
	StageStrategy Stage = "strategy"
	StageStep     Stage = "step"
	StageClose    Stage = "close"
)

// TickError is a failure that terminated a session. Tick is the tick being
// executed, zero before the first decision.
type TickError struct {
	Tick  int
	Stage Stage
	Err   error
}

func (e *TickError) Error() string {
	return fmt.Sprintf("loop: %s failed at tick %d: %v", e.Stage, e.Tick, e.Err)
}

func (e *TickError) Unwrap() error {
	return e.Err
}
