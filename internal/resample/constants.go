package resample

// Interpolator constants.
const (
	linearLatency = 1
	cubicLatency  = 2

	// Hermite basis weights: y = ((a*x + b)*x + c)*x + d with
	// a = -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3, and so on.
	hermite0_5 = 0.5
	hermite1_5 = 1.5
	hermite2_5 = 2.5
)

// Sinc stage constants.
const (
	sincPhases = 256

	// Kaiser's estimate of the window length: N = (A - 8) / (2.285 * Δω).
	kaiserLengthOffset = 8.0
	kaiserLengthScale  = 2.285

	minHalfTaps = 4
	maxHalfTaps = 1024

	// extraOutput covers rounding of the output count estimate.
	extraOutput = 2
)

// Quality preset parameters. Band edges are fractions of the lower
// Nyquist frequency.
const (
	lowPassbandEnd   = 0.80
	lowStopbandBegin = 0.95
	lowAttenuation   = 80.0

	mediumPassbandEnd   = 0.90
	mediumStopbandBegin = 0.98
	mediumAttenuation   = 96.0

	highPassbandEnd   = 0.95
	highStopbandBegin = 0.99
	highAttenuation   = 120.0
)
