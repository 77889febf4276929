// Package physics provides the plant model used by the simulated Moab
// environment.
//
// [BallOnPlate] implements [dynamo.System]: a rolling ball on a plate whose
// pitch and roll follow the commanded angles through a servo lag.
//
//	dyn := physics.NewBallOnPlate()
//	x = integ.Advance(dyn, x, dynamo.Control{pitch, roll}, t, dt, 4)
//	if !dyn.OnPlate(x) {
//	    dyn.HoldAtRim(x)
//	}
package physics
