package filterdesign

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const coeffTolerance = 1e-9

func TestDesign_KnownCoefficients(t *testing.T) {
	tests := []struct {
		name  string
		spec  Spec
		x     []float64
		y     []float64
		gain  float64
		zeros int
		poles int
	}{
		{
			name:  "butterworth_lowpass_order2",
			spec:  Spec{Family: Butterworth, Pass: LowPass, Order: 2, Alpha1: 0.1},
			x:     []float64{1, 2, 1},
			y:     []float64{-0.41280159809618866, 1.142980502539901, -1},
			gain:  14.824637753965218,
			zeros: 2, poles: 2,
		},
		{
			name:  "butterworth_highpass_order3",
			spec:  Spec{Family: Butterworth, Pass: HighPass, Order: 3, Alpha1: 0.2},
			x:     []float64{-1, 3, -3, 1},
			y:     []float64{0.0562972364918426, -0.42178704868956163, 0.5772405248063025, -1},
			gain:  3.8923288237093043,
			zeros: 3, poles: 3,
		},
		{
			name:  "bessel_lowpass_order3",
			spec:  Spec{Family: Bessel, Pass: LowPass, Order: 3, Alpha1: 0.1},
			x:     []float64{1, 3, 3, 1},
			y:     []float64{0.1133638614744327, -0.6108579429402949, 1.2177696738965154, -1},
			gain:  28.59957795430028,
			zeros: 3, poles: 3,
		},
		{
			name:  "chebyshev_lowpass_order4",
			spec:  Spec{Family: Chebyshev, Pass: LowPass, Order: 4, Alpha1: 0.1, RippleDB: -0.5},
			x:     []float64{1, 4, 6, 4, 1},
			y:     []float64{-0.472910940010114, 2.034742900055406, -3.517927191066574, 2.914102514963509, -1},
			gain:  381.018459915461,
			zeros: 4, poles: 4,
		},
		{
			name:  "butterworth_bandpass_order2",
			spec:  Spec{Family: Butterworth, Pass: BandPass, Order: 2, Alpha1: 0.1, Alpha2: 0.2},
			x:     []float64{1, 0, -2, 0, 1},
			y:     []float64{-0.4128015980961885, 1.216651635515531, -2.119202397144283, 1.9424687765478843, -1},
			gain:  14.823338209316331,
			zeros: 4, poles: 4,
		},
		{
			name:  "butterworth_bandstop_order2",
			spec:  Spec{Family: Butterworth, Pass: BandStop, Order: 2, Alpha1: 0.1, Alpha2: 0.2},
			x:     []float64{1, -2.4721359549995796, 3.5278640450004213, -2.4721359549995796, 1},
			y:     []float64{-0.4128015980961885, 1.216651635515531, -2.119202397144283, 1.9424687765478843, -1},
			gain:  1.565078650094807,
			zeros: 4, poles: 4,
		},
		{
			name:  "resonator_bandpass",
			spec:  Spec{Family: Resonator, Pass: BandPass, Alpha1: 0.1, Q: 10},
			x:     []float64{-1, 0, 1},
			y:     []float64{-0.9391013674242925, 1.5687659600591108, -1},
			gain:  32.84145990492735,
			zeros: 2, poles: 2,
		},
		{
			name:  "resonator_bandstop",
			spec:  Spec{Family: Resonator, Pass: BandStop, Alpha1: 0.1, Q: 10},
			x:     []float64{1, -1.618033988749895, 1},
			y:     []float64{-0.9391013674242925, 1.5687659600591108, -1},
			gain:  1.0314055951854326,
			zeros: 2, poles: 2,
		},
		{
			name:  "resonator_allpass",
			spec:  Spec{Family: Resonator, Pass: AllPass, Alpha1: 0.1, Q: 10},
			x:     []float64{1.0648477732949495, -1.6704969393898579, 1},
			y:     []float64{-0.9391013674242925, 1.5687659600591108, -1},
			gain:  1.0648477732949522,
			zeros: 2, poles: 2,
		},
		{
			name:  "butterworth_lowpass_matched_z",
			spec:  Spec{Family: Butterworth, Pass: LowPass, Order: 2, Alpha1: 0.1, MatchedZ: true},
			x:     []float64{1},
			y:     []float64{-0.41124070144277425, 1.1580458998309644, -1},
			gain:  3.949528164220243,
			zeros: 0, poles: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Design(tt.spec)
			require.NoError(t, err)

			assert.Equal(t, tt.zeros, c.NumZeros)
			assert.Equal(t, tt.poles, c.NumPoles)
			require.Len(t, c.X, len(tt.x))
			require.Len(t, c.Y, len(tt.y))
			for i := range tt.x {
				assert.InDelta(t, tt.x[i], c.X[i], coeffTolerance, "X[%d]", i)
			}
			for i := range tt.y {
				assert.InDelta(t, tt.y[i], c.Y[i], coeffTolerance, "Y[%d]", i)
			}
			assert.InEpsilon(t, tt.gain, c.Gain, 1e-9)
		})
	}
}

func TestDesign_LowpassPassbandIsUnity(t *testing.T) {
	for _, family := range []Family{Butterworth, Bessel, Chebyshev} {
		t.Run(family.String(), func(t *testing.T) {
			c, err := Design(Spec{Family: family, Pass: LowPass, Order: 5, Alpha1: 0.05, RippleDB: -1})
			require.NoError(t, err)

			assert.InDelta(t, 1.0, cmplx.Abs(c.DCGain)/c.Gain, 1e-12)
			// Nyquist is fully rejected by the bilinear zeros at z = -1.
			assert.Less(t, cmplx.Abs(c.HFGain)/c.Gain, 1e-9)
		})
	}
}

func TestDesign_HighpassRejectsDC(t *testing.T) {
	c, err := Design(Spec{Family: Butterworth, Pass: HighPass, Order: 4, Alpha1: 0.25})
	require.NoError(t, err)

	assert.Less(t, cmplx.Abs(c.DCGain), 1e-9)
	assert.InDelta(t, 1.0, cmplx.Abs(c.HFGain)/c.Gain, 1e-12)
}

func TestDesign_ExtraZeroPadsPoles(t *testing.T) {
	c, err := Design(Spec{
		Family: Resonator, Pass: BandPass, Alpha1: 0.1, Q: 5,
		ExtraZero: true, ExtraZeroAlpha: 0.25,
	})
	require.NoError(t, err)

	assert.Equal(t, 4, c.NumZeros)
	assert.Equal(t, 4, c.NumPoles)
	assert.InDelta(t, -1.0, c.Y[c.NumPoles], 1e-15)
}

func TestDesign_InfiniteQResonator(t *testing.T) {
	c, err := Design(Spec{Family: Resonator, Pass: BandPass, Alpha1: 0.1, Q: math.Inf(1)})
	require.NoError(t, err)

	require.Len(t, c.Y, 3)
	assert.InDelta(t, -1.0, c.Y[0], coeffTolerance)
	assert.InDelta(t, 2*math.Cos(0.2*math.Pi), c.Y[1], coeffTolerance)

	// Poles sit on the unit circle at the centre frequency.
	assert.True(t, math.IsInf(c.Gain, 1) || c.Gain > 1e6, "gain %v", c.Gain)
}

func TestDesign_ProportionalIntegral(t *testing.T) {
	c, err := Design(Spec{Family: ProportionalIntegral, Alpha1: 0.01})
	require.NoError(t, err)

	assert.Equal(t, 1, c.NumZeros)
	assert.Equal(t, 1, c.NumPoles)
	// Integrator pole at z = 1.
	assert.InDelta(t, 1.0, c.Y[0], coeffTolerance)
	assert.InDelta(t, 1.0, c.Gain, 0)
}

func TestDesign_Errors(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		want error
	}{
		{"alpha_zero", Spec{Family: Butterworth, Order: 2}, ErrInvalidSpec},
		{"alpha_nyquist", Spec{Family: Butterworth, Order: 2, Alpha1: 0.5}, ErrInvalidSpec},
		{"order_zero", Spec{Family: Butterworth, Alpha1: 0.1}, ErrInvalidSpec},
		{"order_too_high", Spec{Family: Bessel, Order: MaxOrder + 1, Alpha1: 0.1}, ErrInvalidSpec},
		{"chebyshev_positive_ripple", Spec{Family: Chebyshev, Order: 2, Alpha1: 0.1, RippleDB: 0.5}, ErrInvalidSpec},
		{"chebyshev_zero_ripple", Spec{Family: Chebyshev, Order: 2, Alpha1: 0.1}, ErrInvalidSpec},
		{"prototype_allpass", Spec{Family: Butterworth, Pass: AllPass, Order: 2, Alpha1: 0.1}, ErrInvalidSpec},
		{"bandpass_inverted_corners", Spec{Family: Butterworth, Pass: BandPass, Order: 2, Alpha1: 0.2, Alpha2: 0.1}, ErrInvalidSpec},
		{"resonator_lowpass", Spec{Family: Resonator, Pass: LowPass, Alpha1: 0.1, Q: 2}, ErrInvalidSpec},
		{"resonator_zero_q", Spec{Family: Resonator, Pass: BandPass, Alpha1: 0.1}, ErrInvalidSpec},
		{"resonator_matched_z", Spec{Family: Resonator, Pass: BandPass, Alpha1: 0.1, Q: 2, MatchedZ: true}, ErrInvalidSpec},
		{"pi_second_order", Spec{Family: ProportionalIntegral, Order: 2, Alpha1: 0.1}, ErrInvalidSpec},
		{"pole_mask_out_of_range", Spec{Family: Butterworth, Order: 2, Alpha1: 0.1, PoleMask: 4}, ErrInvalidSpec},
		{"extra_zero_out_of_range", Spec{Family: Butterworth, Order: 2, Alpha1: 0.1, ExtraZero: true, ExtraZeroAlpha: 0.7}, ErrInvalidSpec},
		{"unpaired_pole", Spec{Family: Butterworth, Order: 2, Alpha1: 0.1, PoleMask: 1}, ErrNotConjugate},
		{"unknown_family", Spec{Family: Family(42), Order: 2, Alpha1: 0.1}, ErrInvalidSpec},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Design(tt.spec)
			require.ErrorIs(t, err, tt.want)
			assert.Nil(t, c)
		})
	}
}

func TestBandpassResonator_NotConverged(t *testing.T) {
	d := &designer{spec: Spec{Family: Resonator, Pass: BandPass, Alpha1: 0.1, Alpha2: 0.1, Q: 10}}
	err := d.bandpassResonator(1)
	require.ErrorIs(t, err, ErrNotConverged)
}

func TestExpandPoly(t *testing.T) {
	var c [4]complex128
	require.NoError(t, expandPoly([]complex128{1, 2, 3}, c[:]))

	// (z-1)(z-2)(z-3) = z^3 - 6z^2 + 11z - 6
	want := []complex128{-6, 11, -6, 1}
	for i := range want {
		assert.InDelta(t, real(want[i]), real(c[i]), 1e-12)
		assert.InDelta(t, 0, imag(c[i]), 1e-12)
	}
}

func TestHorner(t *testing.T) {
	coeffs := []complex128{1, 2, 3} // 1 + 2z + 3z^2
	assert.Equal(t, complex128(6), horner(coeffs, 1))
	assert.Equal(t, complex128(2), horner(coeffs, -1))
}

func TestFamilyPassString(t *testing.T) {
	assert.Equal(t, "chebyshev", Chebyshev.String())
	assert.Equal(t, "bandstop", BandStop.String())
	assert.Equal(t, "family(9)", Family(9).String())
}

func TestCoefficientsResponse(t *testing.T) {
	c, err := Design(Spec{Family: Butterworth, Pass: LowPass, Order: 2, Alpha1: 0.1})
	require.NoError(t, err)

	assert.InDelta(t, 1.0, cmplx.Abs(c.Response(0)), 1e-9)
	// Butterworth is 3 dB down at the corner.
	assert.InDelta(t, 1/math.Sqrt2, cmplx.Abs(c.Response(0.1)), 1e-9)
	assert.Less(t, cmplx.Abs(c.Response(0.45)), 0.01)
}
