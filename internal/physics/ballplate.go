package physics

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/isabella232/moabian/internal/dynamo"
)

// State layout for BallOnPlate.
const (
	IdxX = iota
	IdxY
	IdxVX
	IdxVY
	IdxPitch
	IdxRoll
)

// BallOnPlate models a solid ball rolling without slipping on a tilting
// plate. The plate angles are part of the state and follow the commanded
// angles through a first-order servo lag. With ServoTau == 0 the angles are
// held and the caller sets them directly.
//
// State: [x, y, vx, vy, pitch, roll] with angles in radians.
// Control: [commanded pitch, commanded roll] in radians.
type BallOnPlate struct {
	Gravity  float64
	Damping  float64
	ServoTau float64
	Radius   float64
}

func NewBallOnPlate() *BallOnPlate {
	return &BallOnPlate{
		Gravity:  9.81,
		Damping:  0.05,
		ServoTau: 0.04,
		Radius:   0.1125,
	}
}

func (b *BallOnPlate) StateDim() int {
	return 6
}

func (b *BallOnPlate) ControlDim() int {
	return 2
}

func (b *BallOnPlate) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	// 5/7 is the rolling factor for a solid sphere.
	k := 5.0 / 7.0 * b.Gravity

	ax := k*math.Sin(x[IdxPitch]) - b.Damping*x[IdxVX]
	ay := k*math.Sin(x[IdxRoll]) - b.Damping*x[IdxVY]

	var dPitch, dRoll float64
	if b.ServoTau > 0 && len(u) >= 2 {
		dPitch = (u[0] - x[IdxPitch]) / b.ServoTau
		dRoll = (u[1] - x[IdxRoll]) / b.ServoTau
	}

	return dynamo.State{x[IdxVX], x[IdxVY], ax, ay, dPitch, dRoll}
}

// OnPlate reports whether the ball centre is within the plate radius.
func (b *BallOnPlate) OnPlate(x dynamo.State) bool {
	return math.Hypot(x[IdxX], x[IdxY]) <= b.Radius
}

// HoldAtRim projects the ball back onto the rim and zeroes its velocity.
func (b *BallOnPlate) HoldAtRim(x dynamo.State) {
	r := math.Hypot(x[IdxX], x[IdxY])
	if r == 0 || r <= b.Radius {
		return
	}
	x[IdxX] *= b.Radius / r
	x[IdxY] *= b.Radius / r
	x[IdxVX] = 0
	x[IdxVY] = 0
}

// Configure returns the default model with params applied in name order.
func Configure(params map[string]float64) (*BallOnPlate, error) {
	b := NewBallOnPlate()
	names := slices.Sorted(maps.Keys(params))
	for _, name := range names {
		if err := b.SetParam(name, params[name]); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (b *BallOnPlate) SetParam(name string, value float64) error {
	switch name {
	case "gravity":
		if value <= 0 {
			return fmt.Errorf("gravity must be positive, got %f", value)
		}
		b.Gravity = value
	case "damping":
		b.Damping = value
	case "servo_tau":
		if value < 0 {
			return fmt.Errorf("servo_tau must be non-negative, got %f", value)
		}
		b.ServoTau = value
	case "radius":
		if value <= 0 {
			return fmt.Errorf("radius must be positive, got %f", value)
		}
		b.Radius = value
	default:
		return fmt.Errorf("unknown physics param: %s", name)
	}
	return nil
}
