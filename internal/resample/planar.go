package resample

import (
	"github.com/tphakala/go-audio-dsp/internal/layout"
)

// Planar runs one stage per present channel of a planar block.
type Planar struct {
	quality Quality
	inRate  int
	outRate int
	mask    layout.Mask
	stages  [layout.ChannelCount]Stage
}

// NewPlanar builds stages for every channel in mask.
func NewPlanar(q Quality, inRate, outRate int, mask layout.Mask) (*Planar, error) {
	p := &Planar{quality: q, inRate: inRate, outRate: outRate, mask: mask}
	for _, ch := range mask.Channels() {
		s, err := NewStage(q, inRate, outRate)
		if err != nil {
			return nil, err
		}
		p.stages[ch] = s
	}
	return p, nil
}

// Process resamples n frames of every present channel. All channels
// produce the same number of frames, which is returned. Channels absent
// from the mask are left untouched.
func (p *Planar) Process(in, out [][]float32, n int) int {
	produced := 0
	for ch, s := range p.stages {
		if s == nil || ch >= len(in) || ch >= len(out) || in[ch] == nil || out[ch] == nil {
			continue
		}
		produced = s.Process(out[ch], in[ch][:n])
	}
	return produced
}

// MaxOutput bounds the frames produced for n input frames.
func (p *Planar) MaxOutput(n int) int {
	for _, s := range p.stages {
		if s != nil {
			return s.MaxOutput(n)
		}
	}
	return 0
}

// reserver is implemented by stages that buffer input between blocks.
type reserver interface {
	Reserve(frames int)
}

// Reserve preallocates stage buffers for blocks of up to frames frames.
func (p *Planar) Reserve(frames int) {
	for _, s := range p.stages {
		if r, ok := s.(reserver); ok {
			r.Reserve(frames)
		}
	}
}

// Reset clears every stage.
func (p *Planar) Reset() {
	for _, s := range p.stages {
		if s != nil {
			s.Reset()
		}
	}
}

// Latency is the delay in input samples.
func (p *Planar) Latency() int {
	for _, s := range p.stages {
		if s != nil {
			return s.Latency()
		}
	}
	return 0
}

// Delay is the latency in seconds.
func (p *Planar) Delay() float64 {
	return float64(p.Latency()) / float64(p.inRate)
}

// InRate returns the input sample rate.
func (p *Planar) InRate() int { return p.inRate }

// OutRate returns the output sample rate.
func (p *Planar) OutRate() int { return p.outRate }

// Mask returns the channels being resampled.
func (p *Planar) Mask() layout.Mask { return p.mask }
