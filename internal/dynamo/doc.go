// Package dynamo provides the numeric primitives behind the simulated plant.
//
//   - [State]: vector representing model state
//   - [Control]: vector of model inputs
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Integrator]: numerical stepper interface
//
// # Example
//
//	dyn := physics.NewBallOnPlate()
//	integ := integrators.NewRK4()
//	x = integ.Step(dyn, x, u, t, dt)
//
// These types are not safe for concurrent use.
package dynamo
