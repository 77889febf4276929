package control

import (
	"context"
	"fmt"
	"math"

	"github.com/isabella232/moabian/internal/plant"
)

// PID drives the ball toward the plate centre on both axes. Integral and
// previous error are kept per axis between calls.
type PID struct {
	Kp       float64
	Ki       float64
	Kd       float64
	MaxAngle float64

	dt   float64
	x, y pidAxis
}

type pidAxis struct {
	integral float64
	prevErr  float64
	first    bool
}

func NewPID(kp, ki, kd float64, frequency int, maxAngle float64) (*PID, error) {
	if frequency <= 0 {
		return nil, fmt.Errorf("%w: frequency must be positive, got %d", ErrInvalidOptions, frequency)
	}
	if maxAngle <= 0 {
		return nil, fmt.Errorf("%w: max angle must be positive, got %f", ErrInvalidOptions, maxAngle)
	}
	return &PID{
		Kp:       kp,
		Ki:       ki,
		Kd:       kd,
		MaxAngle: maxAngle,
		dt:       1.0 / float64(frequency),
		x:        pidAxis{first: true},
		y:        pidAxis{first: true},
	}, nil
}

func newPIDStrategy(opts Options) (Strategy, error) {
	return NewPID(opts.PID.Kp, opts.PID.Ki, opts.PID.Kd, opts.Frequency, opts.MaxAngle)
}

func (p *PID) Compute(ctx context.Context, s plant.State) (plant.Action, plant.Info, error) {
	if !s.Detected {
		p.Reset()
		return plant.Action{}, plant.Info{"detected": false}, nil
	}

	action := plant.Action{
		Pitch: p.axis(&p.x, s.BallX),
		Roll:  p.axis(&p.y, s.BallY),
	}.Clip(p.MaxAngle)

	return action, plant.Info{
		"integral_x": p.x.integral,
		"integral_y": p.y.integral,
	}, nil
}

func (p *PID) axis(a *pidAxis, measured float64) float64 {
	err := -measured

	if a.first {
		a.prevErr = err
		a.first = false
		return p.Kp * err
	}

	a.integral += err * p.dt
	if p.Ki > 0 {
		limit := p.MaxAngle / p.Ki
		a.integral = math.Max(-limit, math.Min(limit, a.integral))
	}
	derivative := (err - a.prevErr) / p.dt
	a.prevErr = err

	return p.Kp*err + p.Ki*a.integral + p.Kd*derivative
}

// Reset clears integral and derivative state
func (p *PID) Reset() {
	p.x = pidAxis{first: true}
	p.y = pidAxis{first: true}
}
