// Package control provides the interchangeable strategies that turn a plant
// state into a plate action.
//
// Every strategy implements [Strategy]:
//
//   - [Null]: constant level plate, for safety and testing
//   - [PID]: proportional-integral-derivative on ball position
//   - [Inference]: asks a remote model server for each action
//   - [Joystick]: manual control from a local joystick device
//
// Strategies are built from a registry entry ([Spec]) and one [Options]
// value. Each factory reads only the fields it needs.
//
// # Usage
//
//	spec, err := control.Lookup("pid")
//	strategy, err := spec.New(control.DefaultOptions())
//	action, info, err := strategy.Compute(ctx, state)
//
// [WithLogging] wraps any strategy and records every tick to a sink without
// changing what the strategy returns.
package control
