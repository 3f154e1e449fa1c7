package resample

import "math"

// Cubic is 4-point cubic Hermite interpolation. It is cheap and keeps a
// continuous first derivative but does no anti-alias filtering.
type Cubic struct {
	ratio   float64
	step    float64
	phase   float64
	history [4]float32 // history[0] is the newest sample
}

// NewCubic returns a cubic stage for ratio = out/in.
func NewCubic(ratio float64) *Cubic {
	return &Cubic{ratio: ratio, step: 1 / ratio}
}

// Process resamples src into dst.
func (c *Cubic) Process(dst, src []float32) int {
	n := 0
	for _, sample := range src {
		c.history[3] = c.history[2]
		c.history[2] = c.history[1]
		c.history[1] = c.history[0]
		c.history[0] = sample

		for c.phase < 1 && n < len(dst) {
			dst[n] = c.interpolate(float32(c.phase))
			n++
			c.phase += c.step
		}
		c.phase--
	}
	return n
}

// interpolate evaluates the Hermite polynomial between history[2] and
// history[1] at x in [0, 1).
func (c *Cubic) interpolate(x float32) float32 {
	y0, y1, y2, y3 := c.history[3], c.history[2], c.history[1], c.history[0]

	a := -hermite0_5*y0 + hermite1_5*y1 - hermite1_5*y2 + hermite0_5*y3
	b := y0 - hermite2_5*y1 + 2*y2 - hermite0_5*y3
	cc := -hermite0_5*y0 + hermite0_5*y2
	d := y1

	return ((a*x+b)*x+cc)*x + d
}

// MaxOutput bounds the output for n inputs.
func (c *Cubic) MaxOutput(n int) int {
	return int(math.Ceil(float64(n)*c.ratio)) + extraOutput
}

// Reset clears the history and phase.
func (c *Cubic) Reset() {
	c.phase = 0
	c.history = [4]float32{}
}

// Latency is two input samples.
func (c *Cubic) Latency() int { return cubicLatency }

// Ratio returns out/in.
func (c *Cubic) Ratio() float64 { return c.ratio }

// Linear is 2-point linear interpolation.
type Linear struct {
	ratio float64
	step  float64
	phase float64
	prev  float32
}

// NewLinear returns a linear stage for ratio = out/in.
func NewLinear(ratio float64) *Linear {
	return &Linear{ratio: ratio, step: 1 / ratio}
}

// Process resamples src into dst.
func (l *Linear) Process(dst, src []float32) int {
	n := 0
	for _, sample := range src {
		for l.phase < 1 && n < len(dst) {
			x := float32(l.phase)
			dst[n] = (1-x)*l.prev + x*sample
			n++
			l.phase += l.step
		}
		l.prev = sample
		l.phase--
	}
	return n
}

// MaxOutput bounds the output for n inputs.
func (l *Linear) MaxOutput(n int) int {
	return int(math.Ceil(float64(n)*l.ratio)) + extraOutput
}

// Reset clears the state.
func (l *Linear) Reset() {
	l.phase = 0
	l.prev = 0
}

// Latency is one input sample.
func (l *Linear) Latency() int { return linearLatency }

// Ratio returns out/in.
func (l *Linear) Ratio() float64 { return l.ratio }
