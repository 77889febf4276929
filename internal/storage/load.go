package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/isabella232/moabian/internal/plant"
)

// Load reads every record from a CSV log written by CSVLog.
func Load(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// Read decodes a CSV log. A log appended to across sessions may repeat the
// header; repeated headers are skipped.
func Read(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)

	var records []Record
	line := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("storage: line %d: %w", line, err)
		}
		if row[0] == header[0] {
			continue
		}
		rec, err := decode(row)
		if err != nil {
			return nil, fmt.Errorf("storage: line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func decode(row []string) (Record, error) {
	var rec Record
	var err error

	if rec.Tick, err = strconv.Atoi(row[0]); err != nil {
		return rec, err
	}

	floats := make([]float64, 0, 11)
	for _, i := range []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 11, 12} {
		v, err := strconv.ParseFloat(row[i], 64)
		if err != nil {
			return rec, fmt.Errorf("column %s: %w", header[i], err)
		}
		floats = append(floats, v)
	}
	detected, err := strconv.ParseBool(row[10])
	if err != nil {
		return rec, fmt.Errorf("column detected: %w", err)
	}

	rec.Elapsed = time.Duration(floats[0] * float64(time.Second))
	rec.State = plant.State{
		BallX:      floats[1],
		BallY:      floats[2],
		VelX:       floats[3],
		VelY:       floats[4],
		SumX:       floats[5],
		SumY:       floats[6],
		PlatePitch: floats[7],
		PlateRoll:  floats[8],
		Detected:   detected,
		Elapsed:    time.Duration(floats[0] * float64(time.Second)),
	}
	rec.Action = plant.Action{Pitch: floats[9], Roll: floats[10]}

	rec.Info = plant.Info{}
	if err := json.Unmarshal([]byte(row[13]), &rec.Info); err != nil {
		return rec, fmt.Errorf("column info: %w", err)
	}
	return rec, nil
}
