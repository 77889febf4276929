package metrics

import (
	"math"

	"github.com/isabella232/moabian/internal/plant"
)

// TrackingError is the RMS distance of the ball from the plate centre over
// the ticks where it was detected, in metres.
type TrackingError struct {
	name    string
	sumSq   float64
	samples int
}

func NewTrackingError() *TrackingError {
	return &TrackingError{name: "tracking_rms"}
}

func (e *TrackingError) Name() string { return e.name }

func (e *TrackingError) Observe(tick int, s plant.State, a plant.Action) {
	if !s.Detected {
		return
	}
	e.sumSq += s.BallX*s.BallX + s.BallY*s.BallY
	e.samples++
}

func (e *TrackingError) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return math.Sqrt(e.sumSq / float64(e.samples))
}

func (e *TrackingError) Reset() {
	e.sumSq = 0
	e.samples = 0
}
