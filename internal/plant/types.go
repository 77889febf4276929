// Package plant defines the values exchanged with the Moab plate and the
// contract every environment implementation satisfies.
//
// A tick is one sense → decide → actuate cycle:
//
//	state, _ := env.Reset(ctx, plant.IconDot, plant.TextClassic)
//	for {
//	    action, info, _ := strategy.Compute(ctx, state)
//	    state, _ = env.Step(ctx, action)
//	}
package plant

import (
	"context"
	"math"
	"time"
)

// Buttons is the state of the hat's menu button and joystick.
type Buttons struct {
	MenuButton bool
	JoyButton  bool
	JoyX       float64
	JoyY       float64
}

// State is a snapshot of the plant taken at the end of a tick.
type State struct {
	BallX float64 // metres from plate centre
	BallY float64
	VelX  float64 // metres per second
	VelY  float64
	SumX  float64 // accumulated position error, metre-seconds
	SumY  float64

	PlatePitch float64 // degrees
	PlateRoll  float64

	Detected bool
	Buttons  Buttons
	Elapsed  time.Duration
}

// IsValid reports whether every numeric field is finite.
func (s State) IsValid() bool {
	for _, v := range []float64{s.BallX, s.BallY, s.VelX, s.VelY, s.SumX, s.SumY, s.PlatePitch, s.PlateRoll} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Action is the commanded plate orientation in degrees. Pitch moves the ball
// along X, roll moves it along Y.
type Action struct {
	Pitch float64
	Roll  float64
}

// Clip limits both axes to [-limit, limit].
func (a Action) Clip(limit float64) Action {
	return Action{
		Pitch: clip(a.Pitch, limit),
		Roll:  clip(a.Roll, limit),
	}
}

func clip(v, limit float64) float64 {
	return math.Max(-limit, math.Min(limit, v))
}

// Info is diagnostic data produced alongside an Action. Only the session log
// reads it.
type Info map[string]any

// Environment is the plant handle. Step must not return faster than one tick
// interval; it is the loop's only rate limiter. Close releases the hardware
// and must be safe to call on every exit path.
type Environment interface {
	Reset(ctx context.Context, icon Icon, text Text) (State, error)
	Step(ctx context.Context, action Action) (State, error)
	Close() error
}

// Opener acquires an Environment. Nothing is touched until it is called.
type Opener func() (Environment, error)
