package integrators

import (
	"math"
	"testing"

	"github.com/isabella232/moabian/internal/dynamo"
)

type oscillator struct{}

func (oscillator) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (oscillator) StateDim() int   { return 2 }
func (oscillator) ControlDim() int { return 0 }

type ramp struct{}

func (ramp) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State{u[0]}
}

func (ramp) StateDim() int   { return 1 }
func (ramp) ControlDim() int { return 1 }

func TestRK4Accuracy(t *testing.T) {
	integ := NewRK4()

	x := dynamo.State{1.0, 0.0}
	dt := 0.01
	steps := 100

	for i := 0; i < steps; i++ {
		x = integ.Step(oscillator{}, x, dynamo.Control{}, float64(i)*dt, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}
	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

func TestRK4AdvanceMatchesSteps(t *testing.T) {
	a := NewRK4()
	b := NewRK4()

	x0 := dynamo.State{1.0, 0.0}
	advanced := a.Advance(oscillator{}, x0, dynamo.Control{}, 0, 0.04, 4)

	stepped := x0
	for i := 0; i < 4; i++ {
		stepped = b.Step(oscillator{}, stepped, dynamo.Control{}, float64(i)*0.01, 0.01)
	}

	for i := range advanced {
		if math.Abs(advanced[i]-stepped[i]) > 1e-12 {
			t.Errorf("component %d: advance %.12f, steps %.12f", i, advanced[i], stepped[i])
		}
	}
}

func TestRK4AdvanceConstantControl(t *testing.T) {
	x := NewRK4().Advance(ramp{}, dynamo.State{0}, dynamo.Control{2}, 0, 0.5, 0)
	if math.Abs(x[0]-1.0) > 1e-12 {
		t.Errorf("expected 1.0, got %f", x[0])
	}
}
