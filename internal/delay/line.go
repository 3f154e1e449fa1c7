// Package delay implements the speaker-distance delay line and unit
// conversions between distances and delay times.
package delay

import (
	"time"
)

// Line is a fixed-time delay over a circular float64 buffer.
//
// Store and Retrieve are called once each per sample. Until the writer has
// wrapped once Retrieve returns silence, so a freshly initialized line never
// exposes stale buffer contents. A line configured for N samples returns
// each stored value exactly N calls later.
//
// Line is not safe for concurrent use.
type Line struct {
	data       []float64
	size       int // ring length in use, samples+1
	readPos    int
	writePos   int
	primed     bool
	delay      time.Duration
	sampleRate int
}

// NewLine returns a line initialized for delay at sampleRate.
func NewLine(delay time.Duration, sampleRate int) *Line {
	l := &Line{}
	l.Init(delay, sampleRate)
	return l
}

// Samples converts delay to a whole number of samples at sampleRate.
func Samples(delay time.Duration, sampleRate int) int {
	if delay <= 0 || sampleRate <= 0 {
		return 0
	}
	return int(int64(delay) * int64(sampleRate) / int64(time.Second))
}

// Init configures the delay and resets the line. The backing buffer is
// reallocated only when the new length exceeds its capacity.
func (l *Line) Init(delay time.Duration, sampleRate int) {
	if delay < 0 {
		delay = 0
	}
	l.delay = delay
	l.sampleRate = sampleRate
	l.size = Samples(delay, sampleRate) + 1

	if l.size > len(l.data) {
		capacity := Samples(delay+growthSlack, sampleRate) + 1
		if capacity < l.size {
			capacity = l.size
		}
		l.data = make([]float64, capacity)
	}

	l.Flush()
}

// SetSampleRate re-initializes the line if the rate changed.
func (l *Line) SetSampleRate(sampleRate int) {
	if sampleRate != l.sampleRate {
		l.Init(l.delay, sampleRate)
	}
}

// SetDelay re-initializes the line if the delay changed.
func (l *Line) SetDelay(delay time.Duration) {
	if delay != l.delay {
		l.Init(delay, l.sampleRate)
	}
}

// Store writes one sample.
func (l *Line) Store(x float64) {
	l.data[l.writePos] = x
	l.writePos++
	if l.writePos >= l.size {
		l.writePos = 0
		l.primed = true
	}
}

// Retrieve returns the sample stored Latency() calls ago, or 0 while the
// line is still filling.
func (l *Line) Retrieve() float64 {
	if !l.primed {
		return 0
	}
	x := l.data[l.readPos]
	l.readPos++
	if l.readPos >= l.size {
		l.readPos = 0
	}
	return x
}

// Flush resets both cursors and the primed flag without freeing the buffer.
func (l *Line) Flush() {
	l.readPos = 0
	l.writePos = 0
	l.primed = false
}

// Primed reports whether a full delay period has been written.
func (l *Line) Primed() bool { return l.primed }

// Delay returns the configured delay.
func (l *Line) Delay() time.Duration { return l.delay }

// SampleRate returns the configured sample rate.
func (l *Line) SampleRate() int { return l.sampleRate }

// Latency returns the delay in samples.
func (l *Line) Latency() int { return l.size - 1 }

// Capacity returns the allocated ring length.
func (l *Line) Capacity() int { return len(l.data) }
