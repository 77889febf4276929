package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	Ticks   int                `json:"ticks"`
	Span    float64            `json:"span_s"`
	Times   []float64          `json:"times"`
	States  [][]float64        `json:"states"`
	Actions [][]float64        `json:"actions"`
	Lost    []int              `json:"lost_ticks,omitempty"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
}

// StateColumns names the entries of each exported state row.
var StateColumns = []string{"ball_x", "ball_y", "vel_x", "vel_y", "plate_pitch", "plate_roll"}

// NewExport arranges records as per-tick rows. Times are seconds since the
// first record.
func NewExport(records []Record, metrics map[string]float64) ExportData {
	data := ExportData{
		Ticks:   len(records),
		Times:   make([]float64, len(records)),
		States:  make([][]float64, len(records)),
		Actions: make([][]float64, len(records)),
		Metrics: metrics,
	}
	if len(records) == 0 {
		return data
	}

	start := records[0].Elapsed
	for i, r := range records {
		s := r.State
		data.Times[i] = (r.Elapsed - start).Seconds()
		data.States[i] = []float64{s.BallX, s.BallY, s.VelX, s.VelY, s.PlatePitch, s.PlateRoll}
		data.Actions[i] = []float64{r.Action.Pitch, r.Action.Roll}
		if !s.Detected {
			data.Lost = append(data.Lost, r.Tick)
		}
	}
	data.Span = data.Times[len(records)-1]
	return data
}

// ExportJSON writes records as indented JSON.
func ExportJSON(w io.Writer, records []Record, metrics map[string]float64) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExport(records, metrics))
}
