package audiodsp

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tphakala/go-audio-dsp/internal/layout"
	"github.com/tphakala/go-audio-dsp/internal/master"
	"github.com/tphakala/go-audio-dsp/internal/mathutil"
	"github.com/tphakala/go-audio-dsp/internal/settings"
)

// StreamHandle addresses a stream slot. It goes stale once the stream is
// destroyed or its slot is reused.
type StreamHandle struct {
	ID  uint
	Gen uint64
}

type slot struct {
	gen    uint64
	stream *Stream
}

// Registry is the process-wide set of streams and shared channel
// corrections. All methods are safe for concurrent use.
type Registry struct {
	cfg     Config
	logger  zerolog.Logger
	metrics *metrics
	store   settings.Store
	hooks   MenuHooks

	mu                sync.Mutex
	templates         map[uint]master.Transform
	gains             [layout.ChannelCount]float64
	gainsDB           [layout.ChannelCount]float64
	delays            [layout.ChannelCount]time.Duration
	maxDelay          time.Duration
	speakerCorrection bool
	names             [layout.ChannelCount]string
	slots             [MaxStreams]slot
}

// NewRegistry loads the stored corrections and registers the enabled
// master modes. A missing settings file is replaced by defaults.
func NewRegistry(cfg Config) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Registry{
		cfg:       cfg,
		logger:    cfg.logger().With().Str("component", "registry").Logger(),
		metrics:   newMetrics(cfg.Metrics),
		store:     cfg.Store,
		hooks:     cfg.MenuHooks,
		templates: make(map[uint]master.Transform),
	}
	if r.store == nil {
		r.store = &settings.MemoryStore{}
	}
	if r.hooks == nil {
		r.hooks = noopMenuHooks{}
	}

	data, err := r.loadSettings()
	if err != nil {
		return nil, err
	}
	r.applySettings(data)

	r.speakerCorrection = data.SpeakerCorrection
	if cfg.SpeakerCorrection != nil {
		r.speakerCorrection = *cfg.SpeakerCorrection
	}
	if r.speakerCorrection {
		for _, h := range menuHooks {
			r.hooks.AddMenuHook(h)
		}
	}

	stereo := data.MasterStereo
	if cfg.StereoDownmix != nil {
		stereo = *cfg.StereoDownmix
	}
	if err := r.EnableMaster(master.ModeStereoDownmix, stereo); err != nil {
		return nil, err
	}

	r.logger.Debug().
		Bool("speaker_correction", r.speakerCorrection).
		Bool("master_stereo", stereo).
		Dur("max_delay", r.maxDelay).
		Msg("registry initialized")
	return r, nil
}

func (r *Registry) loadSettings() (*settings.Data, error) {
	data, err := r.store.Load()
	switch {
	case err == nil:
		return data, nil
	case errors.Is(err, settings.ErrNotExist):
		data = settings.Default()
		if err := r.store.Save(data); err != nil {
			r.logger.Error().Err(err).Msg("failed to write default settings")
		}
		return data, nil
	default:
		r.logger.Error().Err(err).Msg("failed to load settings")
		return nil, fmt.Errorf("%w: %w", ErrSettingsLoad, err)
	}
}

func (r *Registry) applySettings(d *settings.Data) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.setGainLocked(ChannelAll, 0)
	for ch, c := range d.Channels {
		r.names[ch] = c.Name
		if c.Number < 0 {
			continue
		}
		r.setGainLocked(Channel(ch), float64(c.VolumeDB))
		r.delays[ch] = time.Duration(mathutil.Clamp(float64(c.DistanceUS), 0, float64(MaxChannelDelay/time.Microsecond))) * time.Microsecond
	}
	r.updateMaxDelayLocked()
}

// SaveSettings writes the current corrections and flags to the store.
func (r *Registry) SaveSettings() error {
	r.mu.Lock()
	d := settings.Default()
	for ch := range d.Channels {
		d.Channels[ch].Name = r.names[ch]
		d.Channels[ch].VolumeDB = int(math.Round(r.gainsDB[ch]))
		d.Channels[ch].DistanceUS = int(r.delays[ch] / time.Microsecond)
	}
	d.SpeakerCorrection = r.speakerCorrection
	_, d.MasterStereo = r.templates[master.ModeStereoDownmix]
	r.mu.Unlock()

	if err := r.store.Save(d); err != nil {
		r.logger.Error().Err(err).Msg("failed to save settings")
		return err
	}
	return nil
}

// Capabilities reports which pipeline stages the registry takes part in.
func (r *Registry) Capabilities() Capabilities {
	r.mu.Lock()
	defer r.mu.Unlock()

	return Capabilities{
		InputProcess:   true,
		InputResample:  r.cfg.resampling(),
		PreProcess:     true,
		MasterProcess:  len(r.templates) > 0,
		PostProcess:    r.speakerCorrection,
		OutputResample: r.cfg.resampling(),
	}
}

// Modes describes every registered mode, master modes first in id order.
func (r *Registry) Modes() []master.ModeInfo {
	r.mu.Lock()
	ids := make([]uint, 0, len(r.templates))
	for id := range r.templates {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	infos := make([]master.ModeInfo, 0, len(ids)+1)
	for _, id := range ids {
		infos = append(infos, r.templates[id].Info())
	}
	r.mu.Unlock()

	return append(infos, master.ModeInfo{
		ModeID:           PostProcessSpeakerCorrection,
		Name:             "Speaker correction",
		NameLabel:        labelSpeakerCorrection,
		DescriptionLabel: labelSpeakerCorrDesc,
		HelpLabel:        -1,
		SetupLabel:       -1,
		HasSettings:      true,
		StreamTypes:      []int{StreamTypeBasic, StreamTypeMusic, StreamTypeMovie},
	})
}

// EnableMaster registers or drops the template of a master mode.
// Existing streams keep the instances they were created with.
func (r *Registry) EnableMaster(modeID uint, enable bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.templates[modeID]
	switch {
	case enable && !ok:
		t, err := master.Allocate(0, modeID)
		if err != nil {
			r.logger.Error().Err(err).Uint("mode_id", modeID).Msg("failed to enable master mode")
			return err
		}
		r.templates[modeID] = t
	case !enable && ok:
		delete(r.templates, modeID)
	}
	return nil
}

// MasterEnabled reports whether modeID has a registered template.
func (r *Registry) MasterEnabled(modeID uint) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.templates[modeID]
	return ok
}

// SpeakerCorrection reports whether the post-process stage is enabled.
func (r *Registry) SpeakerCorrection() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.speakerCorrection
}

// SetSetting applies a host setting change. Both known settings take a
// bool.
func (r *Registry) SetSetting(name string, value any) error {
	v, ok := value.(bool)
	switch name {
	case SettingSpeakerCorrection, SettingMasterStereo:
		if !ok {
			return fmt.Errorf("%w: %s wants bool, got %T", ErrInvalidConfig, name, value)
		}
	default:
		r.logger.Error().Str("setting", name).Msg("unknown setting")
		return fmt.Errorf("%w: %q", ErrUnknownSetting, name)
	}

	if name == SettingMasterStereo {
		r.logger.Info().
			Bool("from", r.MasterEnabled(master.ModeStereoDownmix)).
			Bool("to", v).
			Msg("changed setting master_stereo")
		return r.EnableMaster(master.ModeStereoDownmix, v)
	}

	r.mu.Lock()
	prev := r.speakerCorrection
	r.speakerCorrection = v
	r.mu.Unlock()

	for _, h := range menuHooks {
		switch {
		case prev && !v:
			r.hooks.RemoveMenuHook(h)
		case !prev && v:
			r.hooks.AddMenuHook(h)
		}
	}
	r.logger.Info().Bool("from", prev).Bool("to", v).Msg("changed setting speaker_correction")
	return nil
}

// SetOutputGain sets the gain correction of ch in dB. ChannelAll sets
// every channel. The linear gain is clamped to [0, 2].
func (r *Registry) SetOutputGain(ch Channel, db float64) error {
	if !ch.Valid() && ch != ChannelAll {
		return fmt.Errorf("%w: %d", ErrUnknownChannel, ch)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.setGainLocked(ch, db)
	for i := range r.slots {
		if s := r.slots[i].stream; s != nil && s.gen != nil {
			s.gen.RefreshVolume()
		}
	}
	return nil
}

func (r *Registry) setGainLocked(ch Channel, db float64) {
	g := mathutil.Clamp(mathutil.DBToGain(db), 0, maxOutputGain)
	if ch == ChannelAll {
		for i := range r.gains {
			r.gains[i] = g
			r.gainsDB[i] = db
		}
		return
	}
	r.gains[ch] = g
	r.gainsDB[ch] = db
}

// OutputGain returns the linear gain of ch.
func (r *Registry) OutputGain(ch Channel) float64 {
	if !ch.Valid() {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gains[ch]
}

// SetDelay sets the distance delay of ch, or of every channel for
// ChannelAll, and updates the delay lines of all streams.
func (r *Registry) SetDelay(ch Channel, d time.Duration) error {
	if !ch.Valid() && ch != ChannelAll {
		return fmt.Errorf("%w: %d", ErrUnknownChannel, ch)
	}
	if d < 0 || d > MaxChannelDelay {
		return fmt.Errorf("%w: %s not in 0..%s", ErrDelayOutOfRange, d, MaxChannelDelay)
	}
	d = d.Round(time.Microsecond)

	r.mu.Lock()
	defer r.mu.Unlock()

	channels := []Channel{ch}
	if ch == ChannelAll {
		channels = layout.AllChannels.Channels()
	}
	for _, c := range channels {
		r.delays[c] = d
	}
	r.updateMaxDelayLocked()

	for i := range r.slots {
		s := r.slots[i].stream
		if s == nil {
			continue
		}
		for _, c := range channels {
			s.updateDelayLocked(c)
		}
	}
	return nil
}

func (r *Registry) updateMaxDelayLocked() {
	r.maxDelay = 0
	for _, d := range r.delays {
		r.maxDelay = max(r.maxDelay, d)
	}
	r.metrics.maxDelay.Set(r.maxDelay.Seconds())
}

// Delay returns the distance delay of ch.
func (r *Registry) Delay(ch Channel) time.Duration {
	if !ch.Valid() {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.delays[ch]
}

// MaxDelay returns the largest distance delay of any channel.
func (r *Registry) MaxDelay() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.maxDelay
}

// Create registers a stream in the slot given by settings.StreamID. A
// stream still occupying the slot is destroyed first.
func (r *Registry) Create(ss *StreamSettings, props *StreamProperties) (StreamHandle, error) {
	if ss == nil || props == nil {
		r.metrics.streamsRejected.Inc()
		return StreamHandle{}, fmt.Errorf("%w: missing settings or properties", ErrInvalidSettings)
	}
	if ss.StreamID >= MaxStreams {
		r.metrics.streamsRejected.Inc()
		r.logger.Error().Uint("stream_id", ss.StreamID).Msg("stream id exceeds stream limit")
		return StreamHandle{}, fmt.Errorf("%w: id %d, limit %d", ErrStreamLimit, ss.StreamID, MaxStreams)
	}
	if err := ss.Validate(); err != nil {
		r.metrics.streamsRejected.Inc()
		r.logger.Error().Err(err).Uint("stream_id", ss.StreamID).Msg("rejected stream")
		return StreamHandle{}, err
	}

	s, err := r.newStream(ss, props)
	if err != nil {
		r.metrics.streamsRejected.Inc()
		r.logger.Error().Err(err).Uint("stream_id", ss.StreamID).Msg("rejected stream")
		return StreamHandle{}, err
	}

	r.mu.Lock()
	sl := &r.slots[ss.StreamID]
	old := sl.stream
	sl.gen++
	sl.stream = s
	h := StreamHandle{ID: ss.StreamID, Gen: sl.gen}
	r.mu.Unlock()

	if old != nil {
		_ = old.Destroy()
	} else {
		r.metrics.activeStreams.Inc()
	}
	r.metrics.streamsCreated.Inc()

	s.logger.Debug().
		Int("in_channels", ss.InChannels).
		Int("out_channels", ss.OutChannels).
		Int("modes", len(s.modes)).
		Msg("stream created")
	return h, nil
}

// Stream resolves a handle.
func (r *Registry) Stream(h StreamHandle) (*Stream, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lookupLocked(h)
}

func (r *Registry) lookupLocked(h StreamHandle) (*Stream, error) {
	if h.ID >= MaxStreams {
		return nil, fmt.Errorf("%w: id %d", ErrStaleHandle, h.ID)
	}
	sl := &r.slots[h.ID]
	if sl.stream == nil || sl.gen != h.Gen {
		return nil, fmt.Errorf("%w: id %d gen %d", ErrStaleHandle, h.ID, h.Gen)
	}
	return sl.stream, nil
}

// Destroy tears down the stream behind h and frees its slot.
func (r *Registry) Destroy(h StreamHandle) error {
	r.mu.Lock()
	s, err := r.lookupLocked(h)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	r.slots[h.ID].stream = nil
	r.mu.Unlock()

	r.metrics.activeStreams.Dec()
	return s.Destroy()
}

// ActiveStreams returns the number of occupied slots.
func (r *Registry) ActiveStreams() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, sl := range r.slots {
		if sl.stream != nil {
			n++
		}
	}
	return n
}

// SetTestSound starts or stops the calibration signal on every stream.
func (r *Registry) SetTestSound(ch Channel, mode TestMode, continuous bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.slots {
		if s := r.slots[i].stream; s != nil {
			s.setTestSoundLocked(ch, mode, continuous)
		}
	}
}

// Close destroys every stream and drops the templates.
func (r *Registry) Close() {
	r.mu.Lock()
	var streams []*Stream
	for i := range r.slots {
		if s := r.slots[i].stream; s != nil {
			streams = append(streams, s)
			r.slots[i].stream = nil
		}
	}
	clear(r.templates)
	r.mu.Unlock()

	for _, s := range streams {
		r.metrics.activeStreams.Dec()
		_ = s.Destroy()
	}
	r.logger.Debug().Msg("registry closed")
}
