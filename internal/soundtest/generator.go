package soundtest

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tphakala/go-audio-dsp/internal/layout"
)

// Mode selects the calibration signal.
type Mode int

const (
	ModeOff Mode = iota
	ModePinkNoise
	ModeVoice
)

func (m Mode) String() string {
	switch m {
	case ModeOff:
		return "off"
	case ModePinkNoise:
		return "pink-noise"
	case ModeVoice:
		return "voice"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Player plays one decoded announcement on a speaker.
type Player interface {
	SetChannel(ch layout.Channel)
	SetVolume(volume float32)
	Play()
	Stop()
}

// PlayerFactory opens the sound file at path.
type PlayerFactory func(path string) (Player, error)

// Options configures a Generator.
type Options struct {
	// OutMask is the set of speakers the calibration cycles through.
	OutMask layout.Mask

	Players PlayerFactory
	Library Library

	// Volume returns the linear playback volume for a channel. It is
	// called from Generator methods, so it must not take locks the
	// caller of those methods already holds.
	Volume func(ch layout.Channel) float32

	// OnSwitch is told about every channel change in continuous mode.
	OnSwitch func(ch layout.Channel)

	Clock  func() time.Time
	Seed   uint64
	Logger zerolog.Logger
}

// Generator replaces a stream's output with a calibration signal.
// It is not safe for concurrent use; the owner serializes calls.
type Generator struct {
	opts   Options
	logger zerolog.Logger

	mode       Mode
	channel    layout.Channel
	continuous bool
	lastSwitch time.Time

	noise  *PinkNoise
	player Player
}

// NewGenerator returns an idle generator.
func NewGenerator(opts Options) *Generator {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Volume == nil {
		opts.Volume = func(layout.Channel) float32 { return 1 }
	}
	return &Generator{
		opts:    opts,
		logger:  opts.Logger.With().Str("component", "soundtest").Logger(),
		channel: layout.Invalid,
	}
}

// Mode returns the active signal.
func (g *Generator) Mode() Mode { return g.mode }

// Channel returns the channel currently under test.
func (g *Generator) Channel() layout.Channel { return g.channel }

// Continuous reports whether the generator cycles through channels.
func (g *Generator) Continuous() bool { return g.continuous }

// SetMode starts, changes or stops the calibration signal. Turning
// continuous mode off while it is running stops the test entirely.
func (g *Generator) SetMode(mode Mode, ch layout.Channel, continuous bool) {
	if !continuous && g.continuous {
		mode = ModeOff
	}

	switch mode {
	case ModePinkNoise:
		if g.noise == nil {
			g.noise = NewPinkNoise(g.opts.Seed)
		}
		g.stopPlayer()
		if continuous {
			ch = g.startCycle()
		}

	case ModeVoice:
		if continuous {
			ch = g.startCycle()
		}
		g.announce(ch)

	default:
		mode = ModeOff
		g.noise = nil
		g.stopPlayer()
	}

	g.logger.Debug().
		Stringer("mode", mode).
		Stringer("channel", ch).
		Bool("continuous", continuous).
		Msg("calibration mode changed")

	g.mode = mode
	g.channel = ch
	g.continuous = continuous
}

// RefreshVolume reapplies the channel volume to a playing announcement.
func (g *Generator) RefreshVolume() {
	if g.player != nil && g.channel.Valid() {
		g.player.SetVolume(g.opts.Volume(g.channel))
	}
}

// Close stops any playing announcement.
func (g *Generator) Close() {
	g.stopPlayer()
	g.noise = nil
	g.mode = ModeOff
}

// Process writes n frames of calibration signal into out. When the
// generator is off, in is copied through. Slots are indexed by
// layout.Channel; nil slots are skipped.
func (g *Generator) Process(in, out [][]float32, n int) int {
	if g.mode == ModeOff {
		for ch, dst := range out {
			if dst == nil {
				continue
			}
			if ch < len(in) && in[ch] != nil {
				copy(dst[:n], in[ch][:n])
			} else {
				clear(dst[:n])
			}
		}
		return n
	}

	for _, dst := range out {
		if dst != nil {
			clear(dst[:n])
		}
	}
	if !g.channel.Valid() {
		return n
	}

	if g.continuous {
		if now := g.opts.Clock(); now.Sub(g.lastSwitch) > SwitchInterval {
			g.advance(now)
		}
	}

	if g.mode == ModePinkNoise && g.noise != nil && int(g.channel) < len(out) {
		if dst := out[g.channel]; dst != nil {
			for i := range n {
				dst[i] = g.noise.Next()
			}
		}
	}
	return n
}

func (g *Generator) startCycle() layout.Channel {
	g.lastSwitch = g.opts.Clock()
	ch := layout.NextPresent(g.opts.OutMask, layout.LFE)
	g.notify(ch)
	return ch
}

func (g *Generator) advance(now time.Time) {
	g.channel = layout.NextPresent(g.opts.OutMask, g.channel)
	g.lastSwitch = now
	g.notify(g.channel)
	if g.mode == ModeVoice {
		g.announce(g.channel)
	}
}

func (g *Generator) notify(ch layout.Channel) {
	if g.opts.OnSwitch != nil {
		g.opts.OnSwitch(ch)
	}
}

func (g *Generator) announce(ch layout.Channel) {
	g.stopPlayer()
	if g.opts.Players == nil || !ch.Valid() {
		return
	}

	path := g.opts.Library.Path(ch)
	p, err := g.opts.Players(path)
	if err != nil {
		g.logger.Error().Err(err).Str("path", path).Msg("failed to open calibration sound")
		return
	}
	p.SetChannel(ch)
	p.SetVolume(g.opts.Volume(ch))
	p.Play()
	g.player = p
}

func (g *Generator) stopPlayer() {
	if g.player != nil {
		g.player.Stop()
		g.player = nil
	}
}
