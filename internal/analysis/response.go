package analysis

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

// Impulse returns the first n outputs of next driven by a unit impulse.
func Impulse(next func(float64) float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		in := 0.0
		if i == 0 {
			in = 1
		}
		out[i] = next(in)
	}
	return out
}

// Magnitude returns |H(k)| for k = 0..size/2 of the impulse response h
// zero-padded (or truncated) to size points.
func Magnitude(h []float64, size int) []float64 {
	buf := make([]float64, size)
	copy(buf, h)
	coeffs := fourier.NewFFT(size).Coefficients(nil, buf)

	mag := make([]float64, len(coeffs))
	for i, c := range coeffs {
		mag[i] = cmplx.Abs(c)
	}
	return mag
}

// DB converts magnitudes to decibels in place, flooring silence at floor.
func DB(mag []float64, floor float64) []float64 {
	for i, m := range mag {
		if m <= 0 {
			mag[i] = floor
			continue
		}
		mag[i] = math.Max(20*math.Log10(m), floor)
	}
	return mag
}

// BinFrequency is the centre frequency of bin k of a size-point FFT.
func BinFrequency(k, size int, sampleRate float64) float64 {
	return float64(k) * sampleRate / float64(size)
}

// Peak returns the bin index and value of the largest magnitude.
func Peak(mag []float64) (int, float64) {
	i := floats.MaxIdx(mag)
	return i, mag[i]
}

// Band summarizes a magnitude response between two bins.
type Band struct {
	Min, Max, Mean float64
}

// Measure reports the spread of mag over bins [from, to).
func Measure(mag []float64, from, to int) Band {
	s := mag[from:to]
	return Band{
		Min:  floats.Min(s),
		Max:  floats.Max(s),
		Mean: floats.Sum(s) / float64(len(s)),
	}
}
