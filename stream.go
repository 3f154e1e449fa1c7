package audiodsp

import (
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/tphakala/go-audio-dsp/internal/delay"
	"github.com/tphakala/go-audio-dsp/internal/layout"
	"github.com/tphakala/go-audio-dsp/internal/master"
	"github.com/tphakala/go-audio-dsp/internal/resample"
	"github.com/tphakala/go-audio-dsp/internal/soundtest"
)

// State is the lifecycle position of a stream.
type State int32

const (
	StateCreated State = iota
	StateInitialized
	StateRunning
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateInitialized:
		return "initialized"
	case StateRunning:
		return "running"
	case StateDestroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// TestMode selects the calibration signal.
type TestMode = soundtest.Mode

const (
	TestOff       = soundtest.ModeOff
	TestPinkNoise = soundtest.ModePinkNoise
	TestVoice     = soundtest.ModeVoice
)

type modeEntry struct {
	transform  master.Transform
	isTemplate bool
}

// Stream is the pipeline state of one audio stream.
//
// Lifecycle calls (Initialize, MasterProcessSetMode, Destroy) and the
// per-block calls are made by the host one at a time. Delay lines and the
// calibration generator are guarded by the registry mutex so the setters
// can reach them from other goroutines.
type Stream struct {
	reg    *Registry
	logger zerolog.Logger
	id     uint
	props  StreamProperties

	settings    StreamSettings
	modes       []modeEntry
	current     master.Transform
	processRate int
	blockSize   int
	state       atomic.Int32

	inResample  *resample.Planar
	outResample *resample.Planar

	// guarded by reg.mu
	lines [layout.ChannelCount]*delay.Line
	gen   *soundtest.Generator
}

func (r *Registry) newStream(ss *StreamSettings, props *StreamProperties) (*Stream, error) {
	s := &Stream{
		reg:         r,
		logger:      r.logger.With().Str("component", "stream").Uint("stream_id", ss.StreamID).Logger(),
		id:          ss.StreamID,
		props:       *props,
		settings:    *ss,
		processRate: ss.OutSampleRate,
		blockSize:   processBlockSize,
	}
	if r.cfg.resampling() {
		s.processRate = r.cfg.ProcessSampleRate
		in, out, err := s.buildResamplers(ss, s.processRate)
		if err != nil {
			return nil, err
		}
		s.inResample, s.outResample = in, out
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range master.Modes() {
		tmpl, ok := r.templates[id]
		if !ok || !tmpl.IsSupported(ss, props) {
			continue
		}
		if ss.StreamID == 0 {
			s.modes = append(s.modes, modeEntry{transform: tmpl, isTemplate: true})
			continue
		}
		f, _ := master.FactoryFor(id)
		s.modes = append(s.modes, modeEntry{transform: f(ss.StreamID)})
	}
	return s, nil
}

// buildResamplers creates the converters between the stream rates and
// rate, sized for the negotiated block lengths.
func (s *Stream) buildResamplers(ss *StreamSettings, rate int) (in, out *resample.Planar, err error) {
	q := s.reg.cfg.ResampleQuality
	frames := max(ss.InFrames, ss.ProcessFrames, ss.OutFrames, processBlockSize)

	if ss.InSampleRate != rate {
		if in, err = resample.NewPlanar(q, ss.InSampleRate, rate, ss.InMask); err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrInvalidSettings, err)
		}
		in.Reserve(frames)
	}
	if ss.OutSampleRate != rate {
		if out, err = resample.NewPlanar(q, rate, ss.OutSampleRate, ss.OutMask); err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrInvalidSettings, err)
		}
		out.Reserve(frames)
	}
	return in, out, nil
}

// ID returns the stream id.
func (s *Stream) ID() uint { return s.id }

// State returns the lifecycle state.
func (s *Stream) State() State { return State(s.state.Load()) }

// Properties returns the identity captured at creation.
func (s *Stream) Properties() StreamProperties { return s.props }

// Settings returns the negotiated settings.
func (s *Stream) Settings() StreamSettings { return s.settings }

// ProcessSampleRate is the rate the master and post-process stages run at.
func (s *Stream) ProcessSampleRate() int { return s.processRate }

func (s *Stream) destroyed() bool {
	return s.State() == StateDestroyed
}

// running reports whether the stages may process, marking the first
// processed block. Streams that were never initialized or are destroyed
// copy their input through.
func (s *Stream) running() bool {
	switch s.State() {
	case StateCreated, StateDestroyed:
		return false
	case StateInitialized:
		s.state.CompareAndSwap(int32(StateInitialized), int32(StateRunning))
	}
	return true
}

// Initialize applies renegotiated settings, rebuilds the delay lines of
// the present output channels and initializes the selected transform.
// When the transform rejects the settings it is dropped and the stream
// continues with the master stage copying its input.
func (s *Stream) Initialize(ss *StreamSettings) error {
	if s.destroyed() {
		return ErrStreamDestroyed
	}
	if err := ss.Validate(); err != nil {
		s.logger.Error().Err(err).Msg("rejected stream settings")
		return err
	}

	settings := *ss
	settings.StreamID = s.id
	rate := settings.OutSampleRate
	var in, out *resample.Planar
	if s.reg.cfg.resampling() {
		rate = s.reg.cfg.ProcessSampleRate
		var err error
		if in, out, err = s.buildResamplers(&settings, rate); err != nil {
			return err
		}
	}

	// Setters on other goroutines read the settings under the registry
	// mutex.
	s.reg.mu.Lock()
	s.settings = settings
	s.processRate = rate
	s.inResample, s.outResample = in, out
	for ch := range layout.ChannelCount {
		s.updateDelayLocked(ch)
	}
	s.reg.mu.Unlock()

	var err error
	if s.current != nil {
		if err = s.current.Initialize(&s.settings); err != nil {
			s.logger.Error().Err(err).Str("mode", s.current.Name()).Msg("failed to initialize master mode")
			s.dropCurrent()
		}
	}

	s.state.Store(int32(StateInitialized))
	s.logger.Debug().Int("process_rate", s.processRate).Stringer("out_mask", s.settings.OutMask).Msg("stream initialized")
	return err
}

// dropCurrent deinitializes and deselects the active transform.
func (s *Stream) dropCurrent() {
	if s.current != nil {
		s.current.Deinitialize()
		s.current = nil
	}
}

// delayRate is the rate of the post-process stage.
func (s *Stream) delayRate() int {
	if !s.reg.cfg.resampling() && s.settings.ProcessSampleRate > 0 {
		return s.settings.ProcessSampleRate
	}
	return s.processRate
}

// UpdateDelay reapplies the configured delay of ch.
func (s *Stream) UpdateDelay(ch Channel) {
	if !ch.Valid() {
		return
	}
	s.reg.mu.Lock()
	defer s.reg.mu.Unlock()
	s.updateDelayLocked(ch)
}

func (s *Stream) updateDelayLocked(ch Channel) {
	d := s.reg.delays[ch]
	if d <= 0 || !s.settings.OutMask.Has(ch) || s.destroyed() {
		s.lines[ch] = nil
		return
	}
	if s.lines[ch] == nil {
		s.lines[ch] = delay.NewLine(d, s.delayRate())
		return
	}
	s.lines[ch].Init(d, s.delayRate())
}

// IsModeSupported reports whether the stream offers modeID for modeType.
func (s *Stream) IsModeSupported(modeType ModeType, modeID uint) bool {
	switch modeType {
	case ModeTypeMasterProcess:
		for _, m := range s.modes {
			if m.transform.ModeID() == modeID {
				return true
			}
		}
	case ModeTypePostProcess:
		return modeID == PostProcessSpeakerCorrection
	}
	return false
}

// MasterProcessSetMode selects the active master transform. The database
// id is assigned by the host and only logged. An unknown mode leaves the
// stream without an active transform.
func (s *Stream) MasterProcessSetMode(modeType ModeType, modeID uint, uniqueDBID int) error {
	if s.destroyed() {
		return ErrStreamDestroyed
	}

	var next master.Transform
	if modeType == ModeTypeMasterProcess {
		for _, m := range s.modes {
			if m.transform.ModeID() == modeID {
				next = m.transform
				break
			}
		}
	}

	if next == nil {
		s.dropCurrent()
		s.reg.metrics.modeSelections.WithLabelValues("unknown").Inc()
		s.logger.Error().Uint("mode_id", modeID).Msg("requested master mode not present on stream")
		return fmt.Errorf("%w: %d", ErrUnknownMode, modeID)
	}

	if s.State() != StateCreated && next != s.current {
		s.dropCurrent()
		if err := next.Initialize(&s.settings); err != nil {
			s.reg.metrics.modeSelections.WithLabelValues("failed").Inc()
			s.logger.Error().Err(err).Uint("mode_id", modeID).Msg("failed to initialize master mode")
			return err
		}
	}

	s.current = next
	s.reg.metrics.modeSelections.WithLabelValues("ok").Inc()
	s.logger.Info().
		Str("mode", next.Name()).
		Uint("mode_id", modeID).
		Int("unique_db_id", uniqueDBID).
		Msg("master processing mode set")
	return nil
}

// SetTestSound attaches, retunes or detaches the calibration generator.
func (s *Stream) SetTestSound(ch Channel, mode TestMode, continuous bool) {
	s.reg.mu.Lock()
	defer s.reg.mu.Unlock()
	s.setTestSoundLocked(ch, mode, continuous)
}

func (s *Stream) setTestSoundLocked(ch Channel, mode TestMode, continuous bool) {
	if mode == TestOff || s.destroyed() {
		if s.gen != nil {
			s.gen.Close()
			s.gen = nil
		}
		return
	}

	if s.gen == nil {
		cfg := &s.reg.cfg
		var onSwitch func(layout.Channel)
		if cfg.OnCalibrationSwitch != nil {
			onSwitch = func(c layout.Channel) { cfg.OnCalibrationSwitch(s.id, c) }
		}
		s.gen = soundtest.NewGenerator(soundtest.Options{
			OutMask: s.settings.OutMask,
			Players: cfg.Players,
			Library: cfg.Sounds,
			// Generator calls happen with the registry mutex held.
			Volume:   func(c layout.Channel) float32 { return float32(s.reg.gains[c]) },
			OnSwitch: onSwitch,
			Clock:    cfg.Clock,
			Seed:     uint64(s.id) + 1,
			Logger:   cfg.logger().With().Uint("stream_id", s.id).Logger(),
		})
	}
	s.gen.SetMode(mode, ch, continuous)
}

// Destroy deinitializes the active transform and releases the stream's
// transforms, delay lines and calibration generator. Per-block calls on a
// destroyed stream copy their input through.
func (s *Stream) Destroy() error {
	if prev := State(s.state.Swap(int32(StateDestroyed))); prev == StateDestroyed {
		return ErrStreamDestroyed
	}

	s.dropCurrent()
	for _, m := range s.modes {
		if !m.isTemplate {
			m.transform.Deinitialize()
		}
	}
	s.modes = nil

	s.reg.mu.Lock()
	s.lines = [layout.ChannelCount]*delay.Line{}
	if s.gen != nil {
		s.gen.Close()
		s.gen = nil
	}
	s.reg.mu.Unlock()

	s.logger.Debug().Msg("stream destroyed")
	return nil
}
