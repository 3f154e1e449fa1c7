// Package mathutil provides numeric helpers shared by the DSP packages:
// Bessel I₀ and Kaiser window design for the resampler, and decibel
// conversions for channel gains.
package mathutil

import "math"

// BesselI0 computes the modified Bessel function of the first kind, order
// zero, by summing its power series Σ ((x/2)^k / k!)².
//
// The series converges for every x and is accurate to machine precision
// for the β range used by Kaiser windows (0..20).
func BesselI0(x float64) float64 {
	half := x / 2
	term := 1.0
	sum := 1.0
	for k := 1; k < besselMaxTerms; k++ {
		term *= half / float64(k)
		sq := term * term
		sum += sq
		if sq < besselEpsilon*sum {
			break
		}
	}
	return sum
}

// KaiserBeta returns the Kaiser window β achieving the given stopband
// attenuation in dB (Kaiser & Schafer).
func KaiserBeta(attenuation float64) float64 {
	switch {
	case attenuation > kaiserAttHigh:
		return kaiserBetaHighCoeff * (attenuation - kaiserBetaHighOffset)
	case attenuation >= kaiserAttMedium:
		d := attenuation - kaiserAttMedium
		return kaiserBetaMediumCoeff1*math.Pow(d, kaiserBetaMediumPower) + kaiserBetaMediumCoeff2*d
	default:
		return 0
	}
}

// Kaiser evaluates the Kaiser window at position x in [-1, 1]. Positions
// outside the window return 0.
func Kaiser(x, beta float64) float64 {
	if x < -1 || x > 1 {
		return 0
	}
	return BesselI0(beta*math.Sqrt(1-x*x)) / BesselI0(beta)
}

// Sinc is the normalized sinc function sin(πx)/(πx).
func Sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}
