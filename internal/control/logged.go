package control

import (
	"context"
	"maps"

	"github.com/isabella232/moabian/internal/plant"
	"github.com/isabella232/moabian/internal/storage"
)

// RecordSink receives one record per successful decision. Append must not
// block a paced loop; it reports whether the record was kept.
type RecordSink interface {
	Append(r storage.Record) bool
}

// Logged records every decision of the wrapped strategy to a sink. Its
// outputs are exactly the wrapped strategy's outputs.
type Logged struct {
	inner Strategy
	sink  RecordSink
	tick  int
}

func WithLogging(inner Strategy, sink RecordSink) *Logged {
	return &Logged{inner: inner, sink: sink}
}

func (l *Logged) Compute(ctx context.Context, s plant.State) (plant.Action, plant.Info, error) {
	action, info, err := l.inner.Compute(ctx, s)
	if err != nil {
		return action, info, err
	}

	l.tick++
	l.sink.Append(storage.Record{
		Tick:    l.tick,
		Elapsed: s.Elapsed,
		State:   s,
		Action:  action,
		Info:    maps.Clone(info),
	})
	return action, info, nil
}

// Close closes the wrapped strategy. The sink belongs to whoever opened it.
func (l *Logged) Close() error {
	return Close(l.inner)
}
