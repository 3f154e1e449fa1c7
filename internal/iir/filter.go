// Package iir runs recurrence filters produced by filterdesign and a
// small RBJ biquad for shelving correction.
//
// A Filter can be reconfigured while another goroutine is processing:
// coefficients are swapped as an immutable snapshot and the processing
// side picks up the new snapshot on its next call.
package iir

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/tphakala/go-audio-dsp/internal/filterdesign"
)

// ErrInvalidCoefficients is returned when a coefficient set cannot be run.
var ErrInvalidCoefficients = errors.New("invalid filter coefficients")

// snapshot is one coefficient set plus its own history. It is never
// mutated after Configure publishes it except by the processing goroutine.
type snapshot struct {
	numZeros int
	numPoles int
	x        []float64 // numZeros+1 feed-forward taps
	y        []float64 // numPoles feedback taps
	invGain  float64

	xv []float64
	yv []float64
}

// Filter is a direct-form recurrence filter.
//
// Process and Next must be called from a single goroutine. Configure and
// Reset may be called from any goroutine.
type Filter struct {
	current atomic.Pointer[snapshot]
}

// New returns a filter configured with c.
func New(c *filterdesign.Coefficients) (*Filter, error) {
	f := &Filter{}
	if err := f.Configure(c); err != nil {
		return nil, err
	}
	return f, nil
}

// Configure validates c and publishes it. History starts from zero.
func (f *Filter) Configure(c *filterdesign.Coefficients) error {
	if c == nil {
		return fmt.Errorf("%w: nil coefficients", ErrInvalidCoefficients)
	}
	if c.NumZeros < 0 || c.NumZeros >= filterdesign.MaxPZ {
		return fmt.Errorf("%w: %d zeros", ErrInvalidCoefficients, c.NumZeros)
	}
	if c.NumPoles < 0 || c.NumPoles >= filterdesign.MaxPZ {
		return fmt.Errorf("%w: %d poles", ErrInvalidCoefficients, c.NumPoles)
	}
	if len(c.X) < c.NumZeros+1 || len(c.Y) < c.NumPoles {
		return fmt.Errorf("%w: coefficient slices shorter than declared order", ErrInvalidCoefficients)
	}
	if c.Gain == 0 || math.IsNaN(c.Gain) || math.IsInf(c.Gain, 0) {
		return fmt.Errorf("%w: gain %v", ErrInvalidCoefficients, c.Gain)
	}

	s := &snapshot{
		numZeros: c.NumZeros,
		numPoles: c.NumPoles,
		x:        append([]float64(nil), c.X[:c.NumZeros+1]...),
		y:        append([]float64(nil), c.Y[:c.NumPoles]...),
		invGain:  1 / c.Gain,
		xv:       make([]float64, c.NumZeros+1),
		yv:       make([]float64, c.NumPoles+1),
	}
	f.current.Store(s)
	return nil
}

// Reset clears the history by republishing the current coefficients.
func (f *Filter) Reset() {
	s := f.current.Load()
	if s == nil {
		return
	}
	f.current.Store(&snapshot{
		numZeros: s.numZeros,
		numPoles: s.numPoles,
		x:        s.x,
		y:        s.y,
		invGain:  s.invGain,
		xv:       make([]float64, len(s.xv)),
		yv:       make([]float64, len(s.yv)),
	})
}

// Order returns the declared zero and pole counts.
func (f *Filter) Order() (zeros, poles int) {
	s := f.current.Load()
	if s == nil {
		return 0, 0
	}
	return s.numZeros, s.numPoles
}

// Next filters one sample. An unconfigured filter passes it through.
func (f *Filter) Next(in float64) float64 {
	s := f.current.Load()
	if s == nil {
		return in
	}
	return s.next(in)
}

// Process filters block in place.
func (f *Filter) Process(block []float32) {
	s := f.current.Load()
	if s == nil {
		return
	}
	for i, v := range block {
		block[i] = float32(s.next(float64(v)))
	}
}

func (s *snapshot) next(in float64) float64 {
	nz, np := s.numZeros, s.numPoles

	copy(s.xv, s.xv[1:])
	s.xv[nz] = in * s.invGain

	copy(s.yv, s.yv[1:])

	var out float64
	for i := 0; i <= nz; i++ {
		out += s.x[i] * s.xv[i]
	}
	for i := range np {
		out += s.y[i] * s.yv[i]
	}
	s.yv[np] = out
	return out
}
