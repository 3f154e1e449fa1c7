package soundtest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-dsp/internal/layout"
	"github.com/tphakala/go-audio-dsp/internal/testutil"
)

const (
	testSeed   = 42
	testFrames = 256
)

type fakePlayer struct {
	path    string
	channel layout.Channel
	volume  float32
	playing bool
	stopped bool
}

func (p *fakePlayer) SetChannel(ch layout.Channel) { p.channel = ch }
func (p *fakePlayer) SetVolume(v float32)          { p.volume = v }
func (p *fakePlayer) Play()                        { p.playing = true }

func (p *fakePlayer) Stop() {
	p.stopped = true
	p.playing = false
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestPinkNoise_Bounded(t *testing.T) {
	p := NewPinkNoise(testSeed)
	out := make([]float32, 1<<14)
	for i := range out {
		out[i] = p.Next()
	}
	testutil.AssertAllInRange(t, out, -1, 1)
	testutil.AssertNoNaNOrInf(t, out)
	assert.InDelta(t, float64(out[len(out)-1]), float64(p.Last()), 0)
}

func TestPinkNoise_Deterministic(t *testing.T) {
	a, b := NewPinkNoise(testSeed), NewPinkNoise(testSeed)
	for range 1000 {
		require.InDelta(t, float64(a.Next()), float64(b.Next()), 0)
	}

	c := NewPinkNoise(testSeed + 1)
	same := true
	for range 100 {
		if a.Next() != c.Next() {
			same = false
		}
	}
	assert.False(t, same)
}

func TestPinkNoise_FirstSampleIsInitialSum(t *testing.T) {
	p := NewPinkNoise(testSeed)
	initial := p.Last()
	// The first sample only advances the counter.
	assert.InDelta(t, float64(initial), float64(p.Next()), 0)
}

func TestLibrary_Path(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "resources", "sounds", "de"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "resources", "sounds", "en"), 0o755))

	tests := []struct {
		name     string
		language string
		ch       layout.Channel
		want     string
	}{
		{"localized", "de", layout.FL, filepath.Join(dir, "resources", "sounds", "de", "Front_Left.wav")},
		{"fallback_language", "fr", layout.SR, filepath.Join(dir, "resources", "sounds", "en", "Side_Right.wav")},
		{"empty_language", "", layout.BL, filepath.Join(dir, "resources", "sounds", "en", "Rear_Left.wav")},
		{"rear_center", "en", layout.BC, filepath.Join(dir, "resources", "sounds", "en", "Rear_Center.wav")},
		{"no_recording", "de", layout.LFE, filepath.Join(dir, "resources", "sounds", "de", "Noise.wav")},
		{"top_channel", "en", layout.TFC, filepath.Join(dir, "resources", "sounds", "en", "Noise.wav")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Library{Dir: dir, Language: tt.language}
			assert.Equal(t, tt.want, l.Path(tt.ch))
		})
	}
}

type harness struct {
	gen      *Generator
	clock    *fakeClock
	players  []*fakePlayer
	switches []layout.Channel
}

func newHarness(mask layout.Mask) *harness {
	h := &harness{clock: &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}}
	h.gen = NewGenerator(Options{
		OutMask: mask,
		Players: func(path string) (Player, error) {
			p := &fakePlayer{path: path}
			h.players = append(h.players, p)
			return p, nil
		},
		Library:  Library{Dir: "/addon", Language: "en"},
		Volume:   func(ch layout.Channel) float32 { return 0.1 * float32(ch+1) },
		OnSwitch: func(ch layout.Channel) { h.switches = append(h.switches, ch) },
		Clock:    h.clock.Now,
		Seed:     testSeed,
	})
	return h
}

func stereoCenter() layout.Mask {
	return layout.MaskOf(layout.FL, layout.FR, layout.FC)
}

func TestGenerator_OffPassesThrough(t *testing.T) {
	h := newHarness(stereoCenter())

	in := testutil.Block(int(layout.ChannelCount), testFrames)
	testutil.Fill(in, 0.25)
	out := make([][]float32, layout.ChannelCount)
	out[layout.FL] = make([]float32, testFrames)
	out[layout.LFE] = make([]float32, testFrames)

	require.Equal(t, testFrames, h.gen.Process(in, out, testFrames))
	testutil.AssertAllEqual(t, out[layout.FL], 0.25, 0)
	testutil.AssertAllEqual(t, out[layout.LFE], 0.25, 0)
	assert.Equal(t, ModeOff, h.gen.Mode())
}

func TestGenerator_PinkNoiseOnOneChannel(t *testing.T) {
	h := newHarness(stereoCenter())
	h.gen.SetMode(ModePinkNoise, layout.FR, false)

	in := testutil.Block(int(layout.ChannelCount), testFrames)
	testutil.Fill(in, 0.5)
	out := testutil.Block(int(layout.ChannelCount), testFrames)
	h.gen.Process(in, out, testFrames)

	for ch := range layout.ChannelCount {
		if ch == layout.FR {
			continue
		}
		testutil.AssertAllZero(t, out[ch], ch.String())
	}
	testutil.AssertAllInRange(t, out[layout.FR], -1, 1)

	nonZero := 0
	for _, v := range out[layout.FR] {
		if v != 0 {
			nonZero++
		}
	}
	assert.Greater(t, nonZero, testFrames/2)
	assert.Empty(t, h.switches)
}

func TestGenerator_ContinuousCycles(t *testing.T) {
	h := newHarness(stereoCenter())
	h.gen.SetMode(ModePinkNoise, layout.Invalid, true)

	assert.Equal(t, layout.FL, h.gen.Channel())
	assert.True(t, h.gen.Continuous())

	block := testutil.Block(int(layout.ChannelCount), 16)

	h.clock.Advance(SwitchInterval)
	h.gen.Process(block, block, 16)
	assert.Equal(t, layout.FL, h.gen.Channel(), "switch only after the interval has passed")

	want := []layout.Channel{layout.FC, layout.FR, layout.FL}
	for _, ch := range want {
		h.clock.Advance(SwitchInterval + time.Millisecond)
		h.gen.Process(block, block, 16)
		assert.Equal(t, ch, h.gen.Channel())
	}

	assert.Equal(t, []layout.Channel{layout.FL, layout.FC, layout.FR, layout.FL}, h.switches)
}

func TestGenerator_DisablingContinuousStops(t *testing.T) {
	h := newHarness(stereoCenter())
	h.gen.SetMode(ModePinkNoise, layout.Invalid, true)
	h.gen.SetMode(ModePinkNoise, layout.FR, false)

	assert.Equal(t, ModeOff, h.gen.Mode())
	assert.False(t, h.gen.Continuous())
}

func TestGenerator_Voice(t *testing.T) {
	h := newHarness(stereoCenter())
	h.gen.SetMode(ModeVoice, layout.FC, false)

	require.Len(t, h.players, 1)
	p := h.players[0]
	assert.Equal(t, filepath.Join("/addon", "resources", "sounds", "en", "Front_Center.wav"), p.path)
	assert.Equal(t, layout.FC, p.channel)
	assert.InDelta(t, 0.3, float64(p.volume), 1e-6)
	assert.True(t, p.playing)

	h.gen.opts.Volume = func(layout.Channel) float32 { return 0.9 }
	h.gen.RefreshVolume()
	assert.InDelta(t, 0.9, float64(p.volume), 1e-6)

	// Voice output is played by the host; the stream itself is silent.
	in := testutil.Block(int(layout.ChannelCount), 8)
	testutil.Fill(in, 1)
	out := testutil.Block(int(layout.ChannelCount), 8)
	h.gen.Process(in, out, 8)
	for ch := range layout.ChannelCount {
		testutil.AssertAllZero(t, out[ch], ch.String())
	}

	h.gen.SetMode(ModeOff, layout.Invalid, false)
	assert.True(t, p.stopped)
	assert.Equal(t, ModeOff, h.gen.Mode())
}

func TestGenerator_ContinuousVoiceAnnouncesEachChannel(t *testing.T) {
	h := newHarness(layout.MaskOf(layout.FL, layout.FR))
	h.gen.SetMode(ModeVoice, layout.Invalid, true)

	block := testutil.Block(int(layout.ChannelCount), 4)
	h.clock.Advance(SwitchInterval + time.Second)
	h.gen.Process(block, block, 4)

	require.Len(t, h.players, 2)
	assert.Equal(t, layout.FL, h.players[0].channel)
	assert.True(t, h.players[0].stopped)
	assert.Equal(t, layout.FR, h.players[1].channel)
	assert.True(t, h.players[1].playing)
}

func TestGenerator_PlayerErrorIsTolerated(t *testing.T) {
	g := NewGenerator(Options{
		OutMask: stereoCenter(),
		Players: func(string) (Player, error) { return nil, errors.New("no device") },
	})
	g.SetMode(ModeVoice, layout.FL, false)
	assert.Equal(t, ModeVoice, g.Mode())

	g.RefreshVolume()
	g.Close()
	assert.Equal(t, ModeOff, g.Mode())
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "pink-noise", ModePinkNoise.String())
	assert.Equal(t, "mode(7)", Mode(7).String())
}
