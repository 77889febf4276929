package dynamo

import "errors"

var (
	// ErrInvalidState indicates a state vector with NaN or Inf values.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrDimensionMismatch indicates mismatched state/control dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")
)

// CheckDims returns ErrDimensionMismatch unless x and u match the system.
func CheckDims(dyn System, x State, u Control) error {
	if len(x) != dyn.StateDim() || len(u) != dyn.ControlDim() {
		return ErrDimensionMismatch
	}
	return nil
}
