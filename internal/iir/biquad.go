package iir

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Biquad is a transposed direct form II second-order section.
type Biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
	z1, z2     float64
}

// NewHighShelf designs an RBJ high shelf at freq Hz with the given gain
// in dB and shelf slope (1 is the steepest monotonic slope).
func NewHighShelf(sampleRate, freq, gainDB, slope float64) (*Biquad, error) {
	if sampleRate <= 0 || freq <= 0 || freq >= sampleRate/2 {
		return nil, fmt.Errorf("%w: shelf frequency %v Hz at %v Hz", ErrInvalidCoefficients, freq, sampleRate)
	}
	if slope <= 0 {
		return nil, fmt.Errorf("%w: shelf slope %v", ErrInvalidCoefficients, slope)
	}

	a := math.Pow(10, gainDB/40)
	w0 := 2 * math.Pi * freq / sampleRate
	cosw, sinw := math.Cos(w0), math.Sin(w0)
	alpha := sinw / 2 * math.Sqrt((a+1/a)*(1/slope-1)+2)
	sqa := 2 * math.Sqrt(a) * alpha

	b0 := a * ((a + 1) + (a-1)*cosw + sqa)
	b1 := -2 * a * ((a - 1) + (a+1)*cosw)
	b2 := a * ((a + 1) + (a-1)*cosw - sqa)
	a0 := (a + 1) - (a-1)*cosw + sqa
	a1 := 2 * ((a - 1) - (a+1)*cosw)
	a2 := (a + 1) - (a-1)*cosw - sqa

	return &Biquad{
		b0: b0 / a0, b1: b1 / a0, b2: b2 / a0,
		a1: a1 / a0, a2: a2 / a0,
	}, nil
}

// Next filters one sample.
func (q *Biquad) Next(in float64) float64 {
	out := q.b0*in + q.z1
	q.z1 = q.b1*in - q.a1*out + q.z2
	q.z2 = q.b2*in - q.a2*out
	return out
}

// Process filters block in place.
func (q *Biquad) Process(block []float32) {
	for i, v := range block {
		block[i] = float32(q.Next(float64(v)))
	}
}

// Reset clears the state.
func (q *Biquad) Reset() {
	q.z1, q.z2 = 0, 0
}

// Response returns the magnitude response at freq Hz.
func (q *Biquad) Response(sampleRate, freq float64) float64 {
	w := 2 * math.Pi * freq / sampleRate
	z1 := complex(math.Cos(w), -math.Sin(w))
	z2 := z1 * z1
	num := complex(q.b0, 0) + complex(q.b1, 0)*z1 + complex(q.b2, 0)*z2
	den := 1 + complex(q.a1, 0)*z1 + complex(q.a2, 0)*z2
	return cmplx.Abs(num / den)
}
