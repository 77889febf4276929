package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"math/cmplx"
)

var ErrTooShort = errors.New("analysis: not enough samples")

// FFT is a radix-2 transform. len(data) must be a power of two.
func FFT(data []float64) ([]complex128, error) {
	n := len(data)
	if n > 1 && bits.OnesCount(uint(n)) != 1 {
		return nil, fmt.Errorf("analysis: fft length %d is not a power of two", n)
	}
	return fft(data), nil
}

func fft(data []float64) []complex128 {
	n := len(data)
	if n <= 1 {
		result := make([]complex128, n)
		for i := range data {
			result[i] = complex(data[i], 0)
		}
		return result
	}

	even := make([]float64, n/2)
	odd := make([]float64, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}

	feven := fft(even)
	fodd := fft(odd)

	result := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		result[k] = feven[k] + w*fodd[k]
		result[k+n/2] = feven[k] - w*fodd[k]
	}
	return result
}

// PowerSpectrum returns the magnitude of each frequency bin up to Nyquist.
// The mean is removed and the samples are zero-padded to a power of two.
func PowerSpectrum(samples []float64) []float64 {
	n := len(samples)
	if n == 0 {
		return nil
	}
	size := 1 << bits.Len(uint(n-1))

	var mean float64
	for _, v := range samples {
		mean += v
	}
	mean /= float64(n)

	padded := make([]float64, size)
	for i, v := range samples {
		padded[i] = v - mean
	}

	spectrum := fft(padded)
	ps := make([]float64, size/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantFrequency returns the strongest non-DC frequency in Hz of samples
// taken at sampleRate Hz.
func DominantFrequency(samples []float64, sampleRate float64) (float64, error) {
	if len(samples) < 4 {
		return 0, fmt.Errorf("%w: need 4, got %d", ErrTooShort, len(samples))
	}
	if sampleRate <= 0 {
		return 0, fmt.Errorf("analysis: sample rate must be positive, got %f", sampleRate)
	}

	ps := PowerSpectrum(samples)
	best := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[best] {
			best = i
		}
	}
	return float64(best) * sampleRate / float64(2*len(ps)), nil
}
