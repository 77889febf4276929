package storage

import (
	"time"

	"github.com/isabella232/moabian/internal/plant"
)

// Record is one logged tick.
type Record struct {
	Tick    int
	Elapsed time.Duration
	State   plant.State
	Action  plant.Action
	Info    plant.Info
}

var header = []string{
	"tick", "elapsed",
	"ball_x", "ball_y", "vel_x", "vel_y", "sum_x", "sum_y",
	"plate_pitch", "plate_roll", "detected",
	"action_pitch", "action_roll",
	"info",
}
