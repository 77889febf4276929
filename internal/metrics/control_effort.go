package metrics

import (
	"math"

	"github.com/isabella232/moabian/internal/plant"
)

// ControlEffort is the mean absolute commanded tilt per tick, in degrees.
type ControlEffort struct {
	name    string
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{
		name: "control_effort",
	}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) Observe(tick int, s plant.State, a plant.Action) {
	c.sum += math.Abs(a.Pitch) + math.Abs(a.Roll)
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}
