package resample

import (
	"fmt"
	"math"

	"github.com/tphakala/go-audio-dsp/internal/mathutil"
	"github.com/tphakala/go-audio-dsp/internal/simdops"
)

// SincParams describes the anti-alias filter of a Sinc stage. Band edges
// are fractions of the lower of the two Nyquist frequencies.
type SincParams struct {
	PassbandEnd   float64
	StopbandBegin float64
	Attenuation   float64
}

// Validate checks the band edges and attenuation.
func (p SincParams) Validate() error {
	if p.PassbandEnd <= 0 || p.StopbandBegin <= p.PassbandEnd || p.StopbandBegin > 1 {
		return fmt.Errorf("invalid band edges: passband %v, stopband %v", p.PassbandEnd, p.StopbandBegin)
	}
	if p.Attenuation <= 0 {
		return fmt.Errorf("invalid attenuation: %v dB", p.Attenuation)
	}
	return nil
}

// Sinc is a Kaiser-windowed sinc interpolator. The kernel is tabulated at
// sincPhases fractional offsets; outputs between two table rows are
// linearly interpolated.
type Sinc struct {
	ratio  float64
	step   float64
	half   int
	rows   [][]float32 // sincPhases+1 rows of 2*half taps
	params SincParams

	// buf holds unconsumed input; t is the position of the next output
	// sample relative to buf[0].
	buf []float32
	t   float64

	dot func(a, b []float32) float32
}

// NewSinc designs the filter for ratio = out/in.
func NewSinc(ratio float64, p SincParams) (*Sinc, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if !(ratio > 0) || math.IsInf(ratio, 0) {
		return nil, fmt.Errorf("%w: ratio %v", ErrInvalidRate, ratio)
	}

	// Frequencies in cycles per input sample.
	scale := 0.5 * math.Min(1, ratio)
	cutoff := scale * (p.PassbandEnd + p.StopbandBegin) / 2
	transition := scale * (p.StopbandBegin - p.PassbandEnd)

	taps := (p.Attenuation - kaiserLengthOffset) / (kaiserLengthScale * 2 * math.Pi * transition)
	half := int(math.Ceil(taps / 2))
	half = max(minHalfTaps, min(maxHalfTaps, half))

	s := &Sinc{
		ratio:  ratio,
		step:   1 / ratio,
		half:   half,
		rows:   designRows(half, cutoff, mathutil.KaiserBeta(p.Attenuation)),
		params: p,
		dot:    simdops.Float32Ops().DotProductUnsafe,
	}
	s.Reset()
	return s, nil
}

// designRows tabulates the windowed sinc. Row p holds the taps for an
// output sample p/sincPhases past the centre input; each row is scaled to
// unity DC gain.
func designRows(half int, cutoff, beta float64) [][]float32 {
	width := 2 * half
	rows := make([][]float32, sincPhases+1)
	row64 := make([]float64, width)
	for p := range rows {
		frac := float64(p) / sincPhases
		var sum float64
		for k := range width {
			x := float64(k-half+1) - frac
			v := 2 * cutoff * mathutil.Sinc(2*cutoff*x) * mathutil.Kaiser(x/float64(half), beta)
			row64[k] = v
			sum += v
		}
		row := make([]float32, width)
		for k, v := range row64 {
			row[k] = float32(v / sum)
		}
		rows[p] = row
	}
	return rows
}

// Process resamples src into dst.
func (s *Sinc) Process(dst, src []float32) int {
	s.buf = append(s.buf, src...)

	n := 0
	for n < len(dst) {
		i := int(s.t)
		if i+s.half >= len(s.buf) {
			break
		}
		win := s.buf[i-s.half+1 : i+s.half+1]

		pf := (s.t - float64(i)) * sincPhases
		p := int(pf)
		mu := float32(pf - float64(p))
		a := s.dot(s.rows[p], win)
		b := s.dot(s.rows[p+1], win)
		dst[n] = a + mu*(b-a)
		n++
		s.t += s.step
	}

	// Keep only the history the next window needs.
	drop := min(int(s.t)-s.half+1, len(s.buf))
	if drop > 0 {
		kept := copy(s.buf, s.buf[drop:])
		s.buf = s.buf[:kept]
		s.t -= float64(drop)
	}
	return n
}

// MaxOutput bounds the output for n more inputs.
func (s *Sinc) MaxOutput(n int) int {
	avail := float64(len(s.buf)+n-s.half) - s.t
	if avail <= 0 {
		return 0
	}
	return int(avail*s.ratio) + extraOutput
}

// Reset clears the history. The first output is centred on the first
// input sample.
func (s *Sinc) Reset() {
	if cap(s.buf) < 4*s.half {
		s.buf = make([]float32, 0, 4*s.half)
	}
	s.buf = s.buf[:s.half-1]
	clear(s.buf)
	s.t = float64(s.half - 1)
}

// Reserve grows the input buffer so blocks of up to frames samples are
// appended without reallocating.
func (s *Sinc) Reserve(frames int) {
	need := frames + 4*s.half
	if cap(s.buf) >= need {
		return
	}
	buf := make([]float32, len(s.buf), need)
	copy(buf, s.buf)
	s.buf = buf
}

// Latency is the filter half width in input samples.
func (s *Sinc) Latency() int { return s.half }

// Ratio returns out/in.
func (s *Sinc) Ratio() float64 { return s.ratio }

// Taps returns the kernel length.
func (s *Sinc) Taps() int { return 2 * s.half }
