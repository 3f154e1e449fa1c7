// Command adsp-render runs a WAV file through the stream pipeline the way
// a media player would: input resample, master mode, speaker correction
// and output resample, block by block.
//
// Usage:
//
//	adsp-render -in movie_51.wav -out stereo.wav
//	adsp-render -in movie_51.wav -out stereo.wav -lfe -gain FL=-3 -delay SR=4.5
//	adsp-render -in movie_51.wav -out movie.wav -out-channels 0 -distance FC=1.2
//	adsp-render -in music.wav -out music.wav -process-rate 96000 -quality high
//	adsp-render -info
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	audiodsp "github.com/tphakala/go-audio-dsp"
	"github.com/tphakala/go-audio-dsp/internal/delay"
	"github.com/tphakala/go-audio-dsp/internal/layout"
	"github.com/tphakala/go-audio-dsp/internal/resample"
	"github.com/tphakala/go-audio-dsp/internal/simdops"
)

const (
	defaultBlockFrames = 1024
	defaultOutChannels = 2
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "adsp-render:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	opts := renderOptions{
		gains:  map[audiodsp.Channel]float64{},
		delays: map[audiodsp.Channel]time.Duration{},
	}

	fs := flag.NewFlagSet("adsp-render", flag.ContinueOnError)
	fs.StringVar(&opts.in, "in", "", "Input WAV file")
	fs.StringVar(&opts.out, "out", "", "Output WAV file")
	fs.IntVar(&opts.outChannels, "out-channels", defaultOutChannels, "Output channel count; 2 enables the stereo downmix, 0 keeps the input layout")
	fs.BoolVar(&opts.lfe, "lfe", false, "Synthesize an LFE channel from the front pair when downmixing")
	fs.IntVar(&opts.processRate, "process-rate", 0, "Run the pipeline at this sample rate (0 disables resampling)")
	quality := fs.String("quality", resample.QualityMedium.String(), "Resampler quality: linear, quick, low, medium, high")
	fs.IntVar(&opts.blockFrames, "block", defaultBlockFrames, "Frames per processing block")
	fs.IntVar(&opts.bits, "bits", 0, "Output bit depth, 16 or 24 (0 keeps the input depth)")
	fs.Func("gain", "Per-channel gain correction `CH=dB`, repeatable (CH may be ALL)", func(s string) error {
		ch, v, err := parseAssignment(s)
		if err != nil {
			return err
		}
		opts.gains[ch] = v
		return nil
	})
	fs.Func("delay", "Per-channel distance delay `CH=ms`, repeatable", func(s string) error {
		ch, v, err := parseAssignment(s)
		if err != nil {
			return err
		}
		opts.delays[ch] = delay.FromMilliseconds(v)
		return nil
	})
	fs.Func("distance", "Per-channel speaker distance correction `CH=m`, repeatable", func(s string) error {
		ch, v, err := parseAssignment(s)
		if err != nil {
			return err
		}
		opts.delays[ch] = delay.FromMeters(v)
		return nil
	})
	info := fs.Bool("info", false, "Print SIMD capabilities and exit")
	verbose := fs.Bool("v", false, "Verbose output")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *info {
		fmt.Println("SIMD:", simdops.CPUInfo())
		return nil
	}
	if opts.in == "" || opts.out == "" {
		fs.Usage()
		return errors.New("both -in and -out are required")
	}

	q, err := resample.ParseQuality(strings.ToLower(*quality))
	if err != nil {
		return err
	}
	opts.quality = q

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).
		With().Timestamp().Logger()

	start := time.Now()
	stats, err := render(&opts, &logger)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	logger.Info().
		Str("in", opts.in).
		Str("out", opts.out).
		Stringer("in_layout", stats.inMask).
		Stringer("out_layout", stats.outMask).
		Int("rate", stats.sampleRate).
		Int64("in_frames", stats.inFrames).
		Int64("out_frames", stats.outFrames).
		Str("mode", stats.mode).
		Float64("realtime", float64(stats.inFrames)/float64(stats.sampleRate)/elapsed.Seconds()).
		Msg("rendered")
	return nil
}

// parseAssignment parses "CH=value" where CH is a channel name or ALL.
func parseAssignment(s string) (audiodsp.Channel, float64, error) {
	name, value, ok := strings.Cut(s, "=")
	if !ok {
		return 0, 0, fmt.Errorf("want CH=value, got %q", s)
	}

	var ch audiodsp.Channel
	if strings.EqualFold(strings.TrimSpace(name), "all") {
		ch = audiodsp.ChannelAll
	} else {
		c, found := layout.ParseChannel(name)
		if !found {
			return 0, 0, fmt.Errorf("unknown channel %q", name)
		}
		ch = c
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad value in %q: %w", s, err)
	}
	return ch, v, nil
}
