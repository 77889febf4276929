package control

import (
	"context"

	"github.com/isabella232/moabian/internal/plant"
)

// Null holds the plate level regardless of state.
type Null struct{}

func NewNull() *Null {
	return &Null{}
}

func (n *Null) Compute(ctx context.Context, s plant.State) (plant.Action, plant.Info, error) {
	return plant.Action{}, plant.Info{}, nil
}
