package audiodsp

import (
	"math"

	"github.com/tphakala/go-audio-dsp/internal/layout"
	"github.com/tphakala/go-audio-dsp/internal/resample"
)

// Per-block entry points. Blocks are planar and indexed by Channel; slots
// of absent channels may be nil. None of these allocate or report errors.

// InputProcess inspects the unmodified input. It always accepts.
func (s *Stream) InputProcess(in [][]float32, n int) bool {
	return true
}

// InputResample converts the input to the process sample rate.
func (s *Stream) InputResample(in, out [][]float32, n int) int {
	if !s.running() {
		return copyPresent(in, out, s.settings.InMask, n)
	}
	s.reg.metrics.blocks[stageInputResample].Inc()
	return resampleOrCopy(s.inResample, in, out, s.settings.InMask, n)
}

// InputResampleNeeded is the block size the input resampler wants.
func (s *Stream) InputResampleNeeded() int { return s.blockSize }

// InputResampleRate is the rate the rest of the pipeline runs at.
func (s *Stream) InputResampleRate() int { return s.processRate }

// InputResampleDelay is the input resampler latency in seconds.
func (s *Stream) InputResampleDelay() float64 { return planarDelay(s.inResample) }

// PreProcess copies the block through. The mode id is accepted for any
// pre-process mode the host routes here.
func (s *Stream) PreProcess(modeID uint, in, out [][]float32, n int) int {
	if s.running() {
		s.reg.metrics.blocks[stagePreProcess].Inc()
	}
	return copyPresent(in, out, s.settings.InMask, n)
}

// PreProcessNeeded reports no block size requirement.
func (s *Stream) PreProcessNeeded() int { return 0 }

// PreProcessDelay reports no latency.
func (s *Stream) PreProcessDelay() float64 { return 0 }

// MasterProcess runs the active transform, or copies the present output
// channels when none is selected.
func (s *Stream) MasterProcess(in, out [][]float32, n int) int {
	if !s.running() || s.current == nil {
		return copyPresent(in, out, s.settings.OutMask, n)
	}
	s.reg.metrics.blocks[stageMaster].Inc()
	return s.current.Process(in, out, n)
}

// MasterProcessGetOutChannels reports the layout produced by the active
// transform, or (0, -1) without one.
func (s *Stream) MasterProcessGetOutChannels() (Mask, int) {
	if s.current == nil {
		return 0, -1
	}
	return s.current.OutChannels()
}

// MasterProcessDelay is the active transform's latency in seconds.
func (s *Stream) MasterProcessDelay() float64 {
	if s.current == nil {
		return 0
	}
	return s.current.Delay()
}

// MasterProcessNeeded is the block size the active transform requires.
func (s *Stream) MasterProcessNeeded() int {
	if s.current == nil {
		return 0
	}
	return s.current.Needed()
}

// MasterProcessName names the active transform.
func (s *Stream) MasterProcessName() string {
	if s.current == nil {
		return ""
	}
	return s.current.Name()
}

// PostProcess applies speaker correction to the present output channels:
// out = softClamp(gain*in), then the channel's distance delay. While a
// calibration signal is attached it replaces the block instead. The
// registry mutex is held for the whole block so every sample sees the
// same gains and delays.
func (s *Stream) PostProcess(modeID uint, in, out [][]float32, n int) int {
	if modeID != PostProcessSpeakerCorrection || !s.running() {
		return copyPresent(in, out, s.settings.OutMask, n)
	}
	m := s.reg.metrics
	m.blocks[stagePostProcess].Inc()

	s.reg.mu.Lock()
	if s.gen != nil {
		n = s.gen.Process(in, out, n)
		s.reg.mu.Unlock()
		m.calibration.Inc()
		return n
	}

	n = copyPresent(in, out, s.settings.OutMask, n)
	clamped := 0
	for ch := range layout.ChannelCount {
		if !s.settings.OutMask.Has(ch) || int(ch) >= len(out) || out[ch] == nil {
			continue
		}
		clamped += s.correctLocked(ch, out[ch][:n])
	}
	s.reg.mu.Unlock()

	if clamped > 0 {
		m.clampedSamples.Add(float64(clamped))
	}
	return n
}

// correctLocked applies gain, clamp and delay to one channel and returns
// how many samples reached the clamp.
func (s *Stream) correctLocked(ch Channel, buf []float32) int {
	gain := s.reg.gains[ch]
	line := s.lines[ch]
	clamped := 0
	for i, x := range buf {
		v := gain * float64(x)
		if math.Abs(v) > softClampKnee {
			clamped++
		}
		v = softClamp(v)
		if line != nil {
			line.Store(v)
			v = line.Retrieve()
		}
		buf[i] = float32(v)
	}
	return clamped
}

// PostProcessNeeded reports no block size requirement.
func (s *Stream) PostProcessNeeded() int { return 0 }

// PostProcessDelay is the largest distance delay in seconds.
func (s *Stream) PostProcessDelay() float64 {
	return s.reg.MaxDelay().Seconds()
}

// OutputResample converts the processed block to the output rate.
func (s *Stream) OutputResample(in, out [][]float32, n int) int {
	if !s.running() {
		return copyPresent(in, out, s.settings.OutMask, n)
	}
	s.reg.metrics.blocks[stageOutputResample].Inc()
	return resampleOrCopy(s.outResample, in, out, s.settings.OutMask, n)
}

// OutputResampleNeeded reports no block size requirement.
func (s *Stream) OutputResampleNeeded() int { return 0 }

// OutputResampleRate is the rate of the stream after the output stage.
func (s *Stream) OutputResampleRate() int {
	if !s.reg.cfg.resampling() {
		return s.settings.InSampleRate
	}
	return s.settings.OutSampleRate
}

// OutputResampleDelay is the output resampler latency in seconds.
func (s *Stream) OutputResampleDelay() float64 { return planarDelay(s.outResample) }

// softClamp is linear up to the knee, bends into a tanh towards ±1 above
// it and hard clips whatever still exceeds full scale.
func softClamp(x float64) float64 {
	const k = softClampKnee
	if math.IsNaN(x) {
		return 0
	}
	switch {
	case x > k:
		x = math.Tanh((x-k)/(1-k))*(1-k) + k
	case x < -k:
		x = math.Tanh((x+k)/(1-k))*(1-k) - k
	}
	return max(-1, min(1, x))
}

// copyPresent copies the channels in mask and returns n.
func copyPresent(in, out [][]float32, mask Mask, n int) int {
	for ch := range layout.ChannelCount {
		if !mask.Has(ch) || int(ch) >= len(out) || out[ch] == nil {
			continue
		}
		if int(ch) < len(in) && in[ch] != nil {
			copy(out[ch][:n], in[ch][:n])
		} else {
			clear(out[ch][:n])
		}
	}
	return n
}

func resampleOrCopy(p *resample.Planar, in, out [][]float32, mask Mask, n int) int {
	if p == nil {
		return copyPresent(in, out, mask, n)
	}
	return p.Process(in, out, n)
}

func planarDelay(p *resample.Planar) float64 {
	if p == nil {
		return 0
	}
	return p.Delay()
}
