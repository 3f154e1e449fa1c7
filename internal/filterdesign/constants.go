package filterdesign

const (
	// MaxOrder is the highest prototype order; the Bessel pole table ends there.
	MaxOrder = 10

	// MaxPZ bounds the pole and zero count of any designed filter.
	MaxPZ = 512

	// epsilon is the tolerance for imaginary residue in expanded
	// polynomials and for resonator phase convergence.
	epsilon = 1e-10

	// resonatorIterations bounds the pole-angle bisection.
	resonatorIterations = 50

	maxAlpha = 0.5
)
