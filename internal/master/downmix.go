package master

import (
	"fmt"

	"github.com/tphakala/go-audio-dsp/internal/layout"
)

// StereoDownmix folds a surround stream into two channels with a
// Pro Logic style matrix. The side channels are phase shifted by 90
// degrees with a Hilbert transformer before mixing so the two surround
// contributions stay decorrelated in the stereo image.
type StereoDownmix struct {
	base

	sampleRate    int
	inChannels    int
	synthesizeLFE bool
	initialized   bool

	left, right hilbertLine
}

// NewStereoDownmix returns an uninitialized downmix for streamID.
func NewStereoDownmix(streamID uint) *StereoDownmix {
	return &StereoDownmix{
		base: base{streamID: streamID, modeID: ModeStereoDownmix, name: "StereoDownmix"},
	}
}

// Info describes the downmix mode.
func (d *StereoDownmix) Info() ModeInfo {
	return ModeInfo{
		ModeID:           d.modeID,
		Name:             d.name,
		NameLabel:        downmixNameLabel,
		DescriptionLabel: downmixDescriptionLabel,
		HelpLabel:        downmixHelpLabel,
		SetupLabel:       noLabel,
		StreamTypes:      []int{layout.StreamTypeBasic, layout.StreamTypeMusic, layout.StreamTypeMovie},
	}
}

// IsSupported accepts surround input folded to exactly two outputs.
func (d *StereoDownmix) IsSupported(settings *layout.StreamSettings, _ *layout.StreamProperties) bool {
	return settings != nil && settings.InChannels > 2 && settings.OutChannels == 2
}

// Initialize captures the stream layout and clears the filter history.
func (d *StereoDownmix) Initialize(settings *layout.StreamSettings) error {
	d.initialized = false
	if !d.IsSupported(settings, nil) {
		if settings == nil {
			return fmt.Errorf("%w: nil settings", ErrUnsupported)
		}
		return fmt.Errorf("%w: %d -> %d channels", ErrUnsupported, settings.InChannels, settings.OutChannels)
	}

	d.sampleRate = settings.ProcessSampleRate
	d.inChannels = settings.InChannels
	d.synthesizeLFE = settings.OutMask.Has(layout.LFE)
	d.left.reset()
	d.right.reset()
	d.initialized = true
	return nil
}

// Deinitialize marks the transform unusable until the next Initialize.
func (d *StereoDownmix) Deinitialize() {
	d.initialized = false
}

// Delay is reported as zero; the Hilbert group delay is not compensated.
func (d *StereoDownmix) Delay() float64 {
	return 0
}

// SynthesizesLFE reports whether LFE output is derived from the fronts.
func (d *StereoDownmix) SynthesizesLFE() bool {
	return d.synthesizeLFE
}

// OutChannels is always front left and right.
func (d *StereoDownmix) OutChannels() (layout.Mask, int) {
	return layout.MaskOf(layout.FL, layout.FR), 2
}

// Process mixes n frames. The phase-shifted side channels are written
// back into in.
func (d *StereoDownmix) Process(in, out [][]float32, n int) int {
	if !d.initialized {
		return 0
	}

	fl, fr, fc := channel(in, layout.FL), channel(in, layout.FR), channel(in, layout.FC)
	sl, sr := channel(in, layout.SL), channel(in, layout.SR)
	outFL, outFR, outLFE := channel(out, layout.FL), channel(out, layout.FR), channel(out, layout.LFE)

	for pos := range n {
		frontL, frontR, center := sample(fl, pos), sample(fr, pos), sample(fc, pos)

		hl := d.left.next(dotProduct, sample(sl, pos))
		hr := d.right.next(dotProduct, sample(sr, pos))
		if sl != nil {
			sl[pos] = hl
		}
		if sr != nil {
			sr[pos] = hr
		}

		if outFL != nil {
			outFL[pos] = downmixGain * (frontWeight*frontL + centerWeight*center + surroundMajor*hl + surroundMinor*hr)
		}
		if outFR != nil {
			outFR[pos] = downmixGain * (frontWeight*frontR + centerWeight*center + surroundMinor*hl - surroundMajor*hr)
		}
		if outLFE != nil {
			if d.synthesizeLFE {
				outLFE[pos] = (frontL + frontR) * lfeWeight
			} else {
				outLFE[pos] = 0
			}
		}
	}

	for _, ch := range silencedOutputs {
		if s := channel(out, ch); s != nil {
			clear(s[:n])
		}
	}

	return n
}

// silencedOutputs are folded into the fronts.
var silencedOutputs = [...]layout.Channel{layout.SL, layout.SR, layout.BL, layout.BR, layout.FC}

func channel(block [][]float32, ch layout.Channel) []float32 {
	if int(ch) >= len(block) {
		return nil
	}
	return block[ch]
}

func sample(s []float32, i int) float32 {
	if s == nil {
		return 0
	}
	return s[i]
}
