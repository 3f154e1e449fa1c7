package audiodsp

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-dsp/internal/master"
	"github.com/tphakala/go-audio-dsp/internal/settings"
)

const (
	testFrames     = 64
	testSampleRate = 48000
	gainDelta      = 1e-9
)

var surround51 = MaskOf(FL, FR, FC, LFE, SL, SR)

func surroundSettings(id uint, outMask Mask) *StreamSettings {
	return &StreamSettings{
		StreamID:          id,
		StreamType:        StreamTypeMovie,
		InChannels:        6,
		InMask:            surround51,
		InFrames:          testFrames,
		InSampleRate:      testSampleRate,
		ProcessFrames:     testFrames,
		ProcessSampleRate: testSampleRate,
		OutFrames:         testFrames,
		OutSampleRate:     testSampleRate,
		OutChannels:       2,
		OutMask:           outMask,
	}
}

func stereoSettings(id uint) *StreamSettings {
	s := surroundSettings(id, MaskOf(FL, FR))
	s.InChannels = 2
	s.InMask = MaskOf(FL, FR)
	return s
}

func testProps() *StreamProperties {
	return &StreamProperties{StreamType: StreamTypeMovie, Channels: 6, SampleRate: testSampleRate, CodecID: "ac3"}
}

func newTestRegistry(t *testing.T, cfg Config) *Registry {
	t.Helper()
	r, err := NewRegistry(cfg)
	require.NoError(t, err)
	t.Cleanup(r.Close)
	return r
}

type hookRecorder struct {
	added, removed []int
}

func (h *hookRecorder) AddMenuHook(m MenuHook)    { h.added = append(h.added, m.ID) }
func (h *hookRecorder) RemoveMenuHook(m MenuHook) { h.removed = append(h.removed, m.ID) }

type failingStore struct{}

func (failingStore) Load() (*settings.Data, error) {
	return nil, settings.ErrInvalidData
}
func (failingStore) Save(*settings.Data) error { return errors.New("read-only") }

func boolPtr(b bool) *bool { return &b }

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"zero value", Config{}, false},
		{"resampling", Config{ProcessSampleRate: 96000}, false},
		{"negative rate", Config{ProcessSampleRate: -1}, true},
		{"rate too high", Config{ProcessSampleRate: 400000}, true},
		{"bad quality", Config{ResampleQuality: 42}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
		})
	}

	_, err := NewRegistry(Config{ProcessSampleRate: -5})
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewRegistry_WritesDefaultsWhenMissing(t *testing.T) {
	store := &settings.MemoryStore{}
	hooks := &hookRecorder{}
	r := newTestRegistry(t, Config{Store: store, MenuHooks: hooks})

	assert.Equal(t, 1, store.Saves())
	for ch := range ChannelAll {
		assert.InDelta(t, 1, r.OutputGain(ch), gainDelta, "channel %s", ch)
		assert.Zero(t, r.Delay(ch))
	}
	assert.True(t, r.SpeakerCorrection())
	assert.True(t, r.MasterEnabled(master.ModeStereoDownmix))
	assert.Equal(t, []int{MenuHookGainSetup, MenuHookDistanceSetup}, hooks.added)
}

func TestNewRegistry_AppliesStoredSettings(t *testing.T) {
	d := settings.Default()
	d.Channels[FL].VolumeDB = -6
	d.Channels[FR].DistanceUS = 5000
	d.Channels[SL].DistanceUS = 2500
	d.Channels[FC].Number = -1
	d.Channels[FC].VolumeDB = -20
	d.MasterStereo = false

	store := &settings.MemoryStore{}
	require.NoError(t, store.Save(d))
	r := newTestRegistry(t, Config{Store: store})

	assert.InDelta(t, math.Pow(10, -6.0/20), r.OutputGain(FL), gainDelta)
	assert.InDelta(t, 1, r.OutputGain(FC), gainDelta, "unset slot keeps default")
	assert.Equal(t, 5*time.Millisecond, r.Delay(FR))
	assert.Equal(t, 5*time.Millisecond, r.MaxDelay())
	assert.False(t, r.MasterEnabled(master.ModeStereoDownmix))
	assert.Equal(t, 1, store.Saves(), "existing settings are not rewritten")
}

func TestNewRegistry_ConfigOverridesFlags(t *testing.T) {
	hooks := &hookRecorder{}
	r := newTestRegistry(t, Config{
		MenuHooks:         hooks,
		SpeakerCorrection: boolPtr(false),
		StereoDownmix:     boolPtr(false),
	})

	assert.False(t, r.SpeakerCorrection())
	assert.False(t, r.MasterEnabled(master.ModeStereoDownmix))
	assert.Empty(t, hooks.added)
}

func TestNewRegistry_LoadFailure(t *testing.T) {
	_, err := NewRegistry(Config{Store: failingStore{}})
	require.ErrorIs(t, err, ErrSettingsLoad)
	require.ErrorIs(t, err, settings.ErrInvalidData)
}

func TestSetOutputGain(t *testing.T) {
	tests := []struct {
		db   float64
		want float64
	}{
		{-12, math.Pow(10, -12.0/20)},
		{-6, math.Pow(10, -6.0/20)},
		{0, 1},
		{6, math.Pow(10, 6.0/20)},
		{7, 2},
		{20, 2},
		{-90, 0},
		{-200, 0},
	}

	r := newTestRegistry(t, Config{})
	for _, tt := range tests {
		require.NoError(t, r.SetOutputGain(FC, tt.db))
		assert.InDelta(t, tt.want, r.OutputGain(FC), gainDelta, "%v dB", tt.db)
	}

	require.NoError(t, r.SetOutputGain(ChannelAll, -3))
	for ch := range ChannelAll {
		assert.InDelta(t, math.Pow(10, -3.0/20), r.OutputGain(ch), gainDelta)
	}

	require.ErrorIs(t, r.SetOutputGain(Channel(25), 0), ErrUnknownChannel)
	require.ErrorIs(t, r.SetOutputGain(ChannelInvalid, 0), ErrUnknownChannel)
}

func TestSetDelay(t *testing.T) {
	r := newTestRegistry(t, Config{})

	require.NoError(t, r.SetDelay(FL, 3*time.Millisecond))
	require.NoError(t, r.SetDelay(FR, 7*time.Millisecond))
	assert.Equal(t, 7*time.Millisecond, r.MaxDelay())

	require.NoError(t, r.SetDelay(FR, time.Millisecond))
	assert.Equal(t, 3*time.Millisecond, r.MaxDelay(), "max is recomputed when lowered")

	require.NoError(t, r.SetDelay(ChannelAll, 0))
	assert.Zero(t, r.MaxDelay())

	require.ErrorIs(t, r.SetDelay(FL, -time.Microsecond), ErrDelayOutOfRange)
	require.ErrorIs(t, r.SetDelay(FL, MaxChannelDelay+time.Microsecond), ErrDelayOutOfRange)
	require.ErrorIs(t, r.SetDelay(Channel(30), time.Millisecond), ErrUnknownChannel)
	require.NoError(t, r.SetDelay(FL, MaxChannelDelay))
}

func TestCapabilities(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		r := newTestRegistry(t, Config{})
		assert.Equal(t, Capabilities{
			InputProcess:  true,
			PreProcess:    true,
			MasterProcess: true,
			PostProcess:   true,
		}, r.Capabilities())
	})

	t.Run("resampling and no modes", func(t *testing.T) {
		r := newTestRegistry(t, Config{
			ProcessSampleRate: 96000,
			SpeakerCorrection: boolPtr(false),
			StereoDownmix:     boolPtr(false),
		})
		assert.Equal(t, Capabilities{
			InputProcess:   true,
			InputResample:  true,
			PreProcess:     true,
			OutputResample: true,
		}, r.Capabilities())
	})
}

func TestModes(t *testing.T) {
	r := newTestRegistry(t, Config{})

	modes := r.Modes()
	require.Len(t, modes, 2)
	assert.Equal(t, master.ModeStereoDownmix, modes[0].ModeID)
	assert.Equal(t, "StereoDownmix", modes[0].Name)
	assert.Equal(t, PostProcessSpeakerCorrection, modes[1].ModeID)
	assert.True(t, modes[1].HasSettings)

	require.NoError(t, r.EnableMaster(master.ModeStereoDownmix, false))
	assert.Len(t, r.Modes(), 1)

	require.ErrorIs(t, r.EnableMaster(9999, true), ErrUnknownMode)
}

func TestSetSetting(t *testing.T) {
	hooks := &hookRecorder{}
	r := newTestRegistry(t, Config{MenuHooks: hooks})
	hooks.added = nil

	require.NoError(t, r.SetSetting(SettingSpeakerCorrection, false))
	assert.False(t, r.SpeakerCorrection())
	assert.Equal(t, []int{MenuHookGainSetup, MenuHookDistanceSetup}, hooks.removed)

	require.NoError(t, r.SetSetting(SettingSpeakerCorrection, false))
	assert.Len(t, hooks.removed, 2, "unchanged value does not touch hooks")

	require.NoError(t, r.SetSetting(SettingSpeakerCorrection, true))
	assert.Equal(t, []int{MenuHookGainSetup, MenuHookDistanceSetup}, hooks.added)

	require.NoError(t, r.SetSetting(SettingMasterStereo, false))
	assert.False(t, r.Capabilities().MasterProcess)
	require.NoError(t, r.SetSetting(SettingMasterStereo, true))
	assert.True(t, r.Capabilities().MasterProcess)

	require.ErrorIs(t, r.SetSetting("volume_boost", true), ErrUnknownSetting)
	require.ErrorIs(t, r.SetSetting(SettingMasterStereo, "yes"), ErrInvalidConfig)
}

func TestSaveSettings(t *testing.T) {
	store := &settings.MemoryStore{}
	r := newTestRegistry(t, Config{Store: store})

	require.NoError(t, r.SetOutputGain(FR, -4))
	require.NoError(t, r.SetDelay(LFE, 1234*time.Microsecond))
	require.NoError(t, r.SetSetting(SettingMasterStereo, false))
	require.NoError(t, r.SaveSettings())

	d, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, -4, d.Channels[FR].VolumeDB)
	assert.Equal(t, 1234, d.Channels[LFE].DistanceUS)
	assert.Equal(t, int(LFE), d.Channels[LFE].Number)
	assert.True(t, d.SpeakerCorrection)
	assert.False(t, d.MasterStereo)

	r2 := newTestRegistry(t, Config{Store: store})
	assert.InDelta(t, r.OutputGain(FR), r2.OutputGain(FR), gainDelta)
	assert.Equal(t, 1234*time.Microsecond, r2.Delay(LFE))
}

func TestCreate_Errors(t *testing.T) {
	r := newTestRegistry(t, Config{})

	_, err := r.Create(surroundSettings(MaxStreams, MaskOf(FL, FR)), testProps())
	require.ErrorIs(t, err, ErrStreamLimit)

	bad := surroundSettings(1, MaskOf(FL, FR))
	bad.InSampleRate = 0
	_, err = r.Create(bad, testProps())
	require.ErrorIs(t, err, ErrInvalidSettings)

	_, err = r.Create(nil, testProps())
	require.ErrorIs(t, err, ErrInvalidSettings)

	assert.Zero(t, r.ActiveStreams())
}

func TestHandles(t *testing.T) {
	r := newTestRegistry(t, Config{})

	h1, err := r.Create(surroundSettings(3, MaskOf(FL, FR)), testProps())
	require.NoError(t, err)
	s1, err := r.Stream(h1)
	require.NoError(t, err)
	assert.Equal(t, uint(3), s1.ID())

	// Reusing the slot destroys the old stream and invalidates its handle.
	h2, err := r.Create(surroundSettings(3, MaskOf(FL, FR)), testProps())
	require.NoError(t, err)
	assert.NotEqual(t, h1.Gen, h2.Gen)
	assert.Equal(t, StateDestroyed, s1.State())
	_, err = r.Stream(h1)
	require.ErrorIs(t, err, ErrStaleHandle)
	assert.Equal(t, 1, r.ActiveStreams())

	require.NoError(t, r.Destroy(h2))
	require.ErrorIs(t, r.Destroy(h2), ErrStaleHandle)
	_, err = r.Stream(StreamHandle{ID: 99})
	require.ErrorIs(t, err, ErrStaleHandle)
	assert.Zero(t, r.ActiveStreams())
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := newTestRegistry(t, Config{Metrics: reg})

	h, err := r.Create(surroundSettings(1, MaskOf(FL, FR)), testProps())
	require.NoError(t, err)
	_, err = r.Create(surroundSettings(2, MaskOf(FL, FR)), testProps())
	require.NoError(t, err)
	_, err = r.Create(surroundSettings(MaxStreams+1, MaskOf(FL, FR)), testProps())
	require.Error(t, err)

	assert.InDelta(t, 2, testutil.ToFloat64(r.metrics.streamsCreated), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.metrics.streamsRejected), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(r.metrics.activeStreams), 0)

	s, err := r.Stream(h)
	require.NoError(t, err)
	require.NoError(t, s.MasterProcessSetMode(ModeTypeMasterProcess, master.ModeStereoDownmix, 7))
	require.Error(t, s.MasterProcessSetMode(ModeTypeMasterProcess, 1, 7))
	assert.InDelta(t, 1, testutil.ToFloat64(r.metrics.modeSelections.WithLabelValues("ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.metrics.modeSelections.WithLabelValues("unknown")), 0)

	require.NoError(t, r.SetDelay(BL, 20*time.Millisecond))
	assert.InDelta(t, 0.02, testutil.ToFloat64(r.metrics.maxDelay), 1e-12)

	require.NoError(t, r.Destroy(h))
	assert.InDelta(t, 1, testutil.ToFloat64(r.metrics.activeStreams), 0)
}
