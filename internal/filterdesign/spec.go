// Package filterdesign synthesizes IIR recurrence coefficients from an
// analog prototype (Butterworth, Bessel, Chebyshev), a digital resonator,
// or a proportional-integral section.
//
// The design path follows the classic pole-zero method: place S-plane
// poles for the prototype, prewarp and transform them to the requested
// pass type, map to the Z-plane with the bilinear or matched-Z transform,
// and expand the pole and zero products into polynomial coefficients.
package filterdesign

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
)

// Family selects the filter characteristic.
type Family int

const (
	Butterworth Family = iota
	Bessel
	Chebyshev
	Resonator
	ProportionalIntegral
)

func (f Family) String() string {
	switch f {
	case Butterworth:
		return "butterworth"
	case Bessel:
		return "bessel"
	case Chebyshev:
		return "chebyshev"
	case Resonator:
		return "resonator"
	case ProportionalIntegral:
		return "proportional-integral"
	default:
		return fmt.Sprintf("family(%d)", int(f))
	}
}

// Pass selects the pass band shape.
type Pass int

const (
	LowPass Pass = iota
	HighPass
	BandPass
	BandStop
	AllPass
)

func (p Pass) String() string {
	switch p {
	case LowPass:
		return "lowpass"
	case HighPass:
		return "highpass"
	case BandPass:
		return "bandpass"
	case BandStop:
		return "bandstop"
	case AllPass:
		return "allpass"
	default:
		return fmt.Sprintf("pass(%d)", int(p))
	}
}

// Errors returned by Design.
var (
	ErrInvalidSpec  = errors.New("invalid filter specification")
	ErrNotConverged = errors.New("resonator pole placement did not converge")
	ErrNotConjugate = errors.New("poles or zeros are not complex conjugates")
)

// Spec describes the filter to design. Frequencies are fractions of the
// sample rate in (0, 0.5).
type Spec struct {
	Family Family
	Pass   Pass
	Order  int

	// Alpha1 is the corner (or resonant) frequency; Alpha2 the upper
	// corner for band filters. Single-corner designs ignore Alpha2.
	Alpha1 float64
	Alpha2 float64

	// RippleDB is the Chebyshev passband ripple, negative (e.g. -0.5).
	RippleDB float64

	// Q is the resonator quality factor. math.Inf(1) places the poles on
	// the unit circle.
	Q float64

	// NoPrewarp skips bilinear prewarping of the corner frequencies.
	NoPrewarp bool

	// MatchedZ maps poles and zeros with z = exp(s) instead of the
	// bilinear transform. It implies NoPrewarp.
	MatchedZ bool

	// ExtraZero adds a conjugate zero pair at ExtraZeroAlpha.
	ExtraZero      bool
	ExtraZeroAlpha float64

	// PoleMask keeps only the selected prototype poles (bit i = i-th
	// left-half-plane pole). Zero keeps all.
	PoleMask uint32
}

// Validate checks the specification before any computation.
func (s *Spec) Validate() error {
	if s.Alpha1 <= 0 || s.Alpha1 >= maxAlpha {
		return fmt.Errorf("%w: alpha1 %v must be in (0, 0.5)", ErrInvalidSpec, s.Alpha1)
	}

	switch s.Family {
	case Butterworth, Bessel, Chebyshev:
		if s.Order < 1 || s.Order > MaxOrder {
			return fmt.Errorf("%w: order %d must be in 1..%d", ErrInvalidSpec, s.Order, MaxOrder)
		}
		if s.Pass == AllPass {
			return fmt.Errorf("%w: allpass requires the resonator family", ErrInvalidSpec)
		}
		if s.PoleMask>>uint(s.Order) != 0 {
			return fmt.Errorf("%w: pole mask selects poles beyond order %d", ErrInvalidSpec, s.Order)
		}
		if s.Family == Chebyshev && s.RippleDB >= 0 {
			return fmt.Errorf("%w: chebyshev ripple %v dB must be negative", ErrInvalidSpec, s.RippleDB)
		}
	case Resonator:
		if s.Pass != BandPass && s.Pass != BandStop && s.Pass != AllPass {
			return fmt.Errorf("%w: resonator supports bandpass, bandstop and allpass only", ErrInvalidSpec)
		}
		if s.MatchedZ || s.NoPrewarp {
			return fmt.Errorf("%w: resonator is designed directly in the z-plane", ErrInvalidSpec)
		}
		if !(s.Q > 0) {
			return fmt.Errorf("%w: resonator Q %v must be positive", ErrInvalidSpec, s.Q)
		}
	case ProportionalIntegral:
		if s.Order > 1 {
			return fmt.Errorf("%w: proportional-integral is first order", ErrInvalidSpec)
		}
	default:
		return fmt.Errorf("%w: unknown family %d", ErrInvalidSpec, int(s.Family))
	}

	if s.Pass == BandPass || s.Pass == BandStop {
		if s.Family != Resonator && (s.Alpha2 <= s.Alpha1 || s.Alpha2 >= maxAlpha) {
			return fmt.Errorf("%w: alpha2 %v must be in (alpha1, 0.5)", ErrInvalidSpec, s.Alpha2)
		}
	}

	if s.ExtraZero && (s.ExtraZeroAlpha < 0 || s.ExtraZeroAlpha > maxAlpha || math.IsNaN(s.ExtraZeroAlpha)) {
		return fmt.Errorf("%w: extra zero alpha %v must be in [0, 0.5]", ErrInvalidSpec, s.ExtraZeroAlpha)
	}

	return nil
}

// Coefficients is a designed recurrence
//
//	y[n] = Σ X[i]·x[n-NumZeros+i] + Σ Y[i]·y[n-NumPoles+i]   (i < NumPoles)
//
// where x is the input divided by Gain. Y[NumPoles] is always -1.
type Coefficients struct {
	NumZeros int
	NumPoles int
	X        []float64
	Y        []float64

	// Gain normalizes the passband to unity: |H| at DC, Nyquist or the
	// centre frequency depending on the pass type.
	Gain float64

	DCGain     complex128
	CenterGain complex128
	HFGain     complex128
}

// Response returns the normalized complex response at alpha (fraction of
// the sample rate) computed from the recurrence coefficients.
func (c *Coefficients) Response(alpha float64) complex128 {
	z := cmplx.Rect(1, 2*math.Pi*alpha)
	var num, den complex128
	for i := len(c.X) - 1; i >= 0; i-- {
		num = num*z + complex(c.X[i], 0)
	}
	for i := len(c.Y) - 1; i >= 0; i-- {
		den = den*z - complex(c.Y[i], 0)
	}
	return num / den / complex(c.Gain, 0)
}
