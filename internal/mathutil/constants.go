package mathutil

const (
	// besselEpsilon stops the I₀ series once a term no longer changes the sum.
	besselEpsilon  = 1e-17
	besselMaxTerms = 500

	// Kaiser & Schafer β breakpoints (dB) and coefficients.
	kaiserAttHigh          = 50.0
	kaiserAttMedium        = 21.0
	kaiserBetaHighCoeff    = 0.1102
	kaiserBetaHighOffset   = 8.7
	kaiserBetaMediumCoeff1 = 0.5842
	kaiserBetaMediumPower  = 0.4
	kaiserBetaMediumCoeff2 = 0.07886

	// Gain conversions.
	dbPerDecade = 20.0
	// SilenceDB is the level at and below which DBToGain returns zero.
	SilenceDB = -90.0
)
