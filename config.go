package audiodsp

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/tphakala/go-audio-dsp/internal/layout"
	"github.com/tphakala/go-audio-dsp/internal/resample"
	"github.com/tphakala/go-audio-dsp/internal/settings"
	"github.com/tphakala/go-audio-dsp/internal/soundtest"
)

// Config holds the registry configuration. The zero value is usable:
// nothing is logged, no metrics are registered and settings live in
// memory.
type Config struct {
	// Logger receives lifecycle, mode and setting messages. Nil disables
	// logging.
	Logger *zerolog.Logger

	// Metrics registers the registry's collectors. Nil skips registration.
	Metrics prometheus.Registerer

	// Store persists channel corrections. Nil keeps them in memory.
	Store settings.Store

	// MenuHooks is told when the setup entry points become available.
	MenuHooks MenuHooks

	// Players opens calibration announcements. Nil disables voice prompts.
	Players soundtest.PlayerFactory

	// Sounds locates the announcement files.
	Sounds soundtest.Library

	// SpeakerCorrection and StereoDownmix override the stored flags when
	// set.
	SpeakerCorrection *bool
	StereoDownmix     *bool

	// ProcessSampleRate enables the resample stages. Streams are converted
	// to this rate before the master stage and back afterwards. Zero
	// disables resampling.
	ProcessSampleRate int

	// ResampleQuality selects the resampler used when ProcessSampleRate is set.
	ResampleQuality resample.Quality

	// OnCalibrationSwitch is called from the audio thread whenever a
	// continuous calibration moves to another channel.
	OnCalibrationSwitch func(streamID uint, ch Channel)

	// Clock drives the calibration channel cycling. Nil uses time.Now.
	Clock func() time.Time
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.ProcessSampleRate < 0 || c.ProcessSampleRate > layout.MaxSampleRate {
		return fmt.Errorf("%w: process sample rate %d not in 0..%d",
			ErrInvalidConfig, c.ProcessSampleRate, layout.MaxSampleRate)
	}
	if c.ResampleQuality < resample.QualityLinear || c.ResampleQuality > resample.QualityHigh {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, c.ResampleQuality)
	}
	return nil
}

func (c *Config) logger() zerolog.Logger {
	if c.Logger == nil {
		return zerolog.Nop()
	}
	return *c.Logger
}

func (c *Config) resampling() bool {
	return c.ProcessSampleRate > 0
}
