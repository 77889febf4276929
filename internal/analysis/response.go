package analysis

import "math"

// SettlingTime returns the time after which every sample stays within band.
// ok is false when the final sample is outside it.
func SettlingTime(samples []float64, dt, band float64) (t float64, ok bool) {
	last := -1
	for i, v := range samples {
		if math.Abs(v) > band {
			last = i
		}
	}
	if last == len(samples)-1 {
		return 0, false
	}
	return float64(last+1) * dt, true
}

// Peak returns the largest absolute sample and its index, or -1 for no
// samples.
func Peak(samples []float64) (float64, int) {
	peak, idx := 0.0, -1
	for i, v := range samples {
		if a := math.Abs(v); idx < 0 || a > peak {
			peak, idx = a, i
		}
	}
	return peak, idx
}

// RMS is the root mean square of samples.
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, v := range samples {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}
