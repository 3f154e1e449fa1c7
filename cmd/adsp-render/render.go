package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	audiodsp "github.com/tphakala/go-audio-dsp"
	"github.com/tphakala/go-audio-dsp/internal/layout"
	"github.com/tphakala/go-audio-dsp/internal/resample"
)

// renderStreamID is the slot the command renders through. Slot 0 would
// share the registry's template transforms.
const renderStreamID = 1

// blockMargin pads intermediate buffers for resampler jitter.
const blockMargin = 64

type renderOptions struct {
	in, out     string
	outChannels int
	lfe         bool
	processRate int
	quality     resample.Quality
	blockFrames int
	bits        int
	gains       map[audiodsp.Channel]float64
	delays      map[audiodsp.Channel]time.Duration
}

type renderStats struct {
	sampleRate int
	inMask     layout.Mask
	outMask    layout.Mask
	inFrames   int64
	outFrames  int64
	mode       string
}

// wavLayouts maps a WAV channel count to speaker positions. File channels
// follow ascending channel order, which matches the WAVE extensible order.
var wavLayouts = map[int]layout.Mask{
	1: layout.MaskOf(layout.FC),
	2: layout.MaskOf(layout.FL, layout.FR),
	3: layout.MaskOf(layout.FL, layout.FR, layout.FC),
	4: layout.MaskOf(layout.FL, layout.FR, layout.BL, layout.BR),
	5: layout.MaskOf(layout.FL, layout.FR, layout.FC, layout.SL, layout.SR),
	6: layout.MaskOf(layout.FL, layout.FR, layout.FC, layout.LFE, layout.SL, layout.SR),
	7: layout.MaskOf(layout.FL, layout.FR, layout.FC, layout.LFE, layout.BC, layout.SL, layout.SR),
	8: layout.MaskOf(layout.FL, layout.FR, layout.FC, layout.LFE, layout.BL, layout.BR, layout.SL, layout.SR),
}

func layoutFor(channels int) (layout.Mask, error) {
	m, ok := wavLayouts[channels]
	if !ok {
		return 0, fmt.Errorf("no speaker layout for %d channels", channels)
	}
	return m, nil
}

// outputLayout picks the output speakers for the requested channel count.
func outputLayout(in layout.Mask, outChannels int, lfe bool) (layout.Mask, int, error) {
	if outChannels == 0 || outChannels == in.Count() {
		return in, in.Count(), nil
	}
	if outChannels != 2 {
		return 0, 0, fmt.Errorf("cannot render %d input channels to %d", in.Count(), outChannels)
	}
	out := layout.MaskOf(layout.FL, layout.FR)
	if lfe {
		out |= layout.LFE.Bit()
	}
	return out, 2, nil
}

func render(opts *renderOptions, logger *zerolog.Logger) (*renderStats, error) {
	if opts.blockFrames <= 0 {
		return nil, fmt.Errorf("block size must be positive, got %d", opts.blockFrames)
	}

	src, err := openWAVInput(opts.in)
	if err != nil {
		return nil, err
	}
	defer func() { _ = src.Close() }()

	inMask := src.mask
	outMask, outChannels, err := outputLayout(inMask, opts.outChannels, opts.lfe)
	if err != nil {
		return nil, err
	}

	reg, err := audiodsp.NewRegistry(audiodsp.Config{
		Logger:            logger,
		ProcessSampleRate: opts.processRate,
		ResampleQuality:   opts.quality,
	})
	if err != nil {
		return nil, err
	}
	defer reg.Close()

	for ch, db := range opts.gains {
		if err := reg.SetOutputGain(ch, db); err != nil {
			return nil, err
		}
	}
	for ch, d := range opts.delays {
		if err := reg.SetDelay(ch, d); err != nil {
			return nil, err
		}
	}

	ss := &audiodsp.StreamSettings{
		StreamID:          renderStreamID,
		StreamType:        audiodsp.StreamTypeBasic,
		InChannels:        src.channels,
		InMask:            inMask,
		InFrames:          opts.blockFrames,
		InSampleRate:      src.rate,
		ProcessFrames:     opts.blockFrames,
		ProcessSampleRate: src.rate,
		OutFrames:         opts.blockFrames,
		OutSampleRate:     src.rate,
		OutChannels:       outChannels,
		OutMask:           outMask,
	}
	props := &audiodsp.StreamProperties{
		StreamType: audiodsp.StreamTypeBasic,
		Name:       opts.in,
		Channels:   src.channels,
		SampleRate: src.rate,
	}

	h, err := reg.Create(ss, props)
	if err != nil {
		return nil, err
	}
	s, err := reg.Stream(h)
	if err != nil {
		return nil, err
	}
	if s.IsModeSupported(audiodsp.ModeTypeMasterProcess, audiodsp.ModeStereoDownmix) {
		if err := s.MasterProcessSetMode(audiodsp.ModeTypeMasterProcess, audiodsp.ModeStereoDownmix, 0); err != nil {
			return nil, err
		}
	} else if outMask != inMask {
		return nil, fmt.Errorf("no master mode renders %s to %s", inMask, outMask)
	}
	if err := s.Initialize(ss); err != nil {
		return nil, err
	}

	bits := opts.bits
	if bits == 0 {
		bits = src.bitDepth
	}
	dst, err := createWAVOutput(opts.out, src.rate, bits, outMask)
	if err != nil {
		return nil, err
	}

	stats := &renderStats{
		sampleRate: src.rate,
		inMask:     inMask,
		outMask:    outMask,
		mode:       s.MasterProcessName(),
	}
	if stats.mode == "" {
		stats.mode = "passthrough"
	}

	err = pump(s, src, dst, opts.blockFrames, stats)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// pump feeds the stream block by block and writes what comes out.
func pump(s *audiodsp.Stream, src *wavInput, dst *wavOutput, frames int, stats *renderStats) error {
	mid := frames
	if r := s.InputResampleRate(); r != stats.sampleRate {
		mid = frames*r/stats.sampleRate + blockMargin
	}
	in := newPlanar(src.mask, frames)
	a := newPlanar(layout.AllChannels, mid)
	b := newPlanar(layout.AllChannels, mid)
	c := newPlanar(layout.AllChannels, mid)
	out := newPlanar(layout.AllChannels, frames+blockMargin)

	for {
		n, err := src.read(in, frames)
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		if n == 0 {
			return nil
		}
		stats.inFrames += int64(n)

		s.InputProcess(in, n)
		m := s.InputResample(in, a, n)
		m = s.PreProcess(0, a, b, m)
		m = s.MasterProcess(b, c, m)
		m = s.PostProcess(audiodsp.PostProcessSpeakerCorrection, c, b, m)
		m = s.OutputResample(b, out, m)

		if err := dst.write(out, m); err != nil {
			return err
		}
		stats.outFrames += int64(m)
	}
}

// newPlanar allocates slots for the channels in mask; others stay nil.
func newPlanar(mask layout.Mask, frames int) [][]float32 {
	b := make([][]float32, layout.ChannelCount)
	for _, ch := range mask.Channels() {
		b[ch] = make([]float32, frames)
	}
	return b
}
