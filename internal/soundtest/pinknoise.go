// Package soundtest generates the speaker calibration signals: pink noise
// routed to one channel at a time and spoken channel announcements.
package soundtest

import (
	"math/bits"
	"math/rand/v2"
)

// PinkNoise is a Voss-McCartney pink noise source. Each output sample
// refreshes one of 32 white generators, chosen by the number of trailing
// zeros of a running counter, so generator k updates every 2^k samples.
type PinkNoise struct {
	counter    uint32
	generators [noiseGenerators]float32
	sum        float32
	rng        *rand.Rand
}

// NewPinkNoise returns a source seeded with seed.
func NewPinkNoise(seed uint64) *PinkNoise {
	p := &PinkNoise{rng: rand.New(rand.NewPCG(seed, seed^noiseSeedMix))}
	p.Reset()
	return p
}

// Reset redraws every generator and restarts the counter.
func (p *PinkNoise) Reset() {
	p.counter = 0
	p.sum = 0
	for i := range p.generators {
		p.generators[i] = p.white()
		p.sum += p.generators[i]
	}
}

// Next returns the next sample in [-1, 1].
func (p *PinkNoise) Next() float32 {
	if p.counter != 0 {
		k := bits.TrailingZeros32(p.counter)
		p.sum -= p.generators[k]
		p.generators[k] = p.white()
		p.sum += p.generators[k]
	}
	p.counter++
	return p.sum / noiseGenerators
}

// Last returns the most recent sample without advancing.
func (p *PinkNoise) Last() float32 {
	return p.sum / noiseGenerators
}

func (p *PinkNoise) white() float32 {
	return 2*p.rng.Float32() - 1
}
