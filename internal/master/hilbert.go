package master

import (
	"github.com/tphakala/go-audio-dsp/internal/simdops"
)

// hilbertCoeffs are the non-zero taps of a 200-tap antisymmetric FIR
// Hilbert transformer. Tap i applies to the sample 2*i positions back.
var hilbertCoeffs = [hilbertTaps]float32{
	+0.0008103736, +0.0008457886, +0.0009017196, +0.0009793364,
	+0.0010798341, +0.0012044365, +0.0013544008, +0.0015310235,
	+0.0017356466, +0.0019696659, +0.0022345404, +0.0025318040,
	+0.0028630784, +0.0032300896, +0.0036346867, +0.0040788644,
	+0.0045647903, +0.0050948365, +0.0056716186, +0.0062980419,
	+0.0069773575, +0.0077132300, +0.0085098208, +0.0093718901,
	+0.0103049226, +0.0113152847, +0.0124104218, +0.0135991079,
	+0.0148917649, +0.0163008758, +0.0178415242, +0.0195321089,
	+0.0213953037, +0.0234593652, +0.0257599469, +0.0283426636,
	+0.0312667947, +0.0346107648, +0.0384804823, +0.0430224431,
	+0.0484451086, +0.0550553725, +0.0633242001, +0.0740128560,
	+0.0884368322, +0.1090816773, +0.1412745301, +0.1988673273,
	+0.3326528346, +0.9997730178, -0.9997730178, -0.3326528346,
	-0.1988673273, -0.1412745301, -0.1090816773, -0.0884368322,
	-0.0740128560, -0.0633242001, -0.0550553725, -0.0484451086,
	-0.0430224431, -0.0384804823, -0.0346107648, -0.0312667947,
	-0.0283426636, -0.0257599469, -0.0234593652, -0.0213953037,
	-0.0195321089, -0.0178415242, -0.0163008758, -0.0148917649,
	-0.0135991079, -0.0124104218, -0.0113152847, -0.0103049226,
	-0.0093718901, -0.0085098208, -0.0077132300, -0.0069773575,
	-0.0062980419, -0.0056716186, -0.0050948365, -0.0045647903,
	-0.0040788644, -0.0036346867, -0.0032300896, -0.0028630784,
	-0.0025318040, -0.0022345404, -0.0019696659, -0.0017356466,
	-0.0015310235, -0.0013544008, -0.0012044365, -0.0010798341,
	-0.0009793364, -0.0009017196, -0.0008457886, -0.0008103736,
}

// hilbertReversed holds the taps oldest-first so a history window can be
// dotted directly.
var hilbertReversed = func() [hilbertTaps]float32 {
	var r [hilbertTaps]float32
	for i, c := range hilbertCoeffs {
		r[hilbertTaps-1-i] = c
	}
	return r
}()

// hilbertLine filters one channel. Because only every other tap is
// populated, even and odd input samples never meet in the same sum, so
// each parity keeps its own contiguous history. Each history is stored
// twice back to back so the newest window is always a flat slice.
type hilbertLine struct {
	hist   [2][2 * hilbertTaps]float32
	pos    [2]int
	parity int
}

func (h *hilbertLine) reset() {
	*h = hilbertLine{}
}

// next stores x and returns the filtered sample.
func (h *hilbertLine) next(dot func(a, b []float32) float32, x float32) float32 {
	p := h.parity
	h.parity ^= 1

	i := h.pos[p]
	h.hist[p][i] = x
	h.hist[p][i+hilbertTaps] = x
	i++
	if i == hilbertTaps {
		i = 0
	}
	h.pos[p] = i

	return dot(hilbertReversed[:], h.hist[p][i:i+hilbertTaps])
}

// dotProduct is the float32 kernel used by the Hilbert lines.
var dotProduct = simdops.Float32Ops().DotProductUnsafe

// HilbertKernel returns the transformer as a dense causal FIR, with zeros
// at the odd taps, for offline analysis.
func HilbertKernel() []float64 {
	h := make([]float64, 2*hilbertTaps)
	for i, c := range hilbertCoeffs {
		h[2*i] = float64(c)
	}
	return h
}
