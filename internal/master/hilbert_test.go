package master

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-dsp/internal/analysis"
)

func TestHilbertLine_MatchesDenseFIR(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	x := make([]float64, 1000)
	for i := range x {
		x[i] = float64(float32(rng.Float64()*2 - 1))
	}

	want := analysis.FIR(HilbertKernel(), x)

	var line hilbertLine
	for i, v := range x {
		got := line.next(dotProduct, float32(v))
		require.InDelta(t, want[i], float64(got), 1e-4, "sample %d", i)
	}
}

func TestHilbertKernel_Response(t *testing.T) {
	const size = 4096
	mag := analysis.Magnitude(HilbertKernel(), size)

	assert.Less(t, mag[0], 1e-6, "DC")
	assert.Less(t, mag[size/2], 1e-6, "Nyquist")

	// Flat quadrature band between 2% and 48% of the sample rate.
	band := analysis.Measure(mag, size/50, size*48/100)
	assert.Greater(t, band.Min, 1.56)
	assert.Less(t, band.Max, 1.58)
}
