package audiodsp

import (
	"errors"

	"github.com/tphakala/go-audio-dsp/internal/layout"
	"github.com/tphakala/go-audio-dsp/internal/master"
)

var (
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrInvalidSettings = layout.ErrInvalidSettings
	ErrStreamLimit     = errors.New("stream id exceeds stream limit")
	ErrStaleHandle     = errors.New("stale stream handle")
	ErrStreamDestroyed = errors.New("stream already destroyed")
	ErrUnknownMode     = master.ErrUnknownMode
	ErrUnknownSetting  = errors.New("unknown setting")
	ErrUnknownChannel  = errors.New("unknown channel")
	ErrDelayOutOfRange = errors.New("delay out of range")
	ErrSettingsLoad    = errors.New("failed to load settings")
)
