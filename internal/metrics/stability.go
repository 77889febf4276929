package metrics

import (
	"math"

	"github.com/isabella232/moabian/internal/plant"
)

// Stability is the fraction of ticks with the ball detected and inside a
// radius around the plate centre.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(tick int, st plant.State, a plant.Action) {
	s.samples++
	if !st.Detected || math.Hypot(st.BallX, st.BallY) > s.threshold {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
