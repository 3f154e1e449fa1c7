package main

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/tphakala/go-audio-dsp/internal/layout"
	"github.com/tphakala/go-audio-dsp/internal/simdops"
)

const (
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32

	maxInt16 = 32767.0
	maxInt24 = 8388607.0
	maxInt32 = 2147483647.0

	wavFormatPCM = 1
)

func maxValue(bitDepth int) float64 {
	switch bitDepth {
	case bitsPerSample24:
		return maxInt24
	case bitsPerSample32:
		return maxInt32
	default:
		return maxInt16
	}
}

// wavInput is a decoded WAV file served in planar blocks.
type wavInput struct {
	file     *os.File
	rate     int
	channels int
	bitDepth int
	mask     layout.Mask
	data     []int
	pos      int
	scale    float32
}

// openWAVInput decodes the whole file at path.
func openWAVInput(path string) (*wavInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		_ = f.Close()
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}

	format := dec.Format()
	in := &wavInput{
		file:     f,
		rate:     format.SampleRate,
		channels: format.NumChannels,
		bitDepth: int(dec.BitDepth),
		data:     buf.Data,
		scale:    float32(1 / maxValue(int(dec.BitDepth))),
	}
	if in.channels <= 0 || in.rate <= 0 {
		_ = f.Close()
		return nil, fmt.Errorf("invalid WAV format: %d channels at %d Hz", in.channels, in.rate)
	}
	if in.mask, err = layoutFor(in.channels); err != nil {
		_ = f.Close()
		return nil, err
	}
	return in, nil
}

// read deinterleaves up to frames frames into the slots of w.mask and
// returns io.EOF with the last block.
func (w *wavInput) read(dst [][]float32, frames int) (int, error) {
	remaining := (len(w.data) - w.pos) / w.channels
	n := min(frames, remaining)
	scale := simdops.Float32Ops().Scale

	for i, ch := range w.mask.Channels() {
		buf := dst[ch][:n]
		for f := range n {
			buf[f] = float32(w.data[w.pos+f*w.channels+i])
		}
		scale(buf, buf, w.scale)
	}
	w.pos += n * w.channels

	if n < frames || w.pos >= len(w.data) {
		return n, io.EOF
	}
	return n, nil
}

// Close closes the input file.
func (w *wavInput) Close() error {
	return w.file.Close()
}

// wavOutput interleaves planar blocks into a PCM WAV file.
type wavOutput struct {
	file   *os.File
	enc    *wav.Encoder
	mask   layout.Mask
	maxVal float64
	buf    *audio.IntBuffer
}

func createWAVOutput(path string, rate, bits int, mask layout.Mask) (*wavOutput, error) {
	switch bits {
	case bitsPerSample16, bitsPerSample24:
	default:
		return nil, fmt.Errorf("unsupported output bit depth %d", bits)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	channels := mask.Count()
	return &wavOutput{
		file:   f,
		enc:    wav.NewEncoder(f, rate, bits, channels, wavFormatPCM),
		mask:   mask,
		maxVal: maxValue(bits),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: channels, SampleRate: rate},
			SourceBitDepth: bits,
		},
	}, nil
}

func (w *wavOutput) write(src [][]float32, frames int) error {
	if frames == 0 {
		return nil
	}
	channels := w.mask.Count()
	need := frames * channels
	if cap(w.buf.Data) < need {
		w.buf.Data = make([]int, need)
	}
	data := w.buf.Data[:need]

	for i, ch := range w.mask.Channels() {
		for f, v := range src[ch][:frames] {
			s := math.Max(-1, math.Min(1, float64(v)))
			data[f*channels+i] = int(math.Round(s * w.maxVal))
		}
	}
	w.buf.Data = data
	if err := w.enc.Write(w.buf); err != nil {
		return fmt.Errorf("failed to write audio data: %w", err)
	}
	return nil
}

// Close finalizes the WAV header and closes the file.
func (w *wavOutput) Close() error {
	if err := w.enc.Close(); err != nil {
		_ = w.file.Close()
		return err
	}
	return w.file.Close()
}
