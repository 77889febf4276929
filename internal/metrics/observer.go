// Package metrics summarises a control session. Observers see every tick in
// order and reduce it to a single number; Collector exports live counters to
// Prometheus.
package metrics

import "github.com/isabella232/moabian/internal/plant"

// Observer is fed the state a decision was made on and the resulting action.
type Observer interface {
	Name() string
	Observe(tick int, s plant.State, a plant.Action)
	Value() float64
	Reset()
}

// DefaultObservers is the set logged at the end of every session.
func DefaultObservers(plateRadius float64) []Observer {
	return []Observer{
		NewControlEffort(),
		NewStability(plateRadius / 2),
		NewTrackingError(),
	}
}

// Summary collects the current value of each observer by name.
func Summary(observers []Observer) map[string]float64 {
	out := make(map[string]float64, len(observers))
	for _, o := range observers {
		out[o.Name()] = o.Value()
	}
	return out
}
