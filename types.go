package audiodsp

import (
	"github.com/tphakala/go-audio-dsp/internal/layout"
	"github.com/tphakala/go-audio-dsp/internal/master"
	"github.com/tphakala/go-audio-dsp/internal/resample"
	"github.com/tphakala/go-audio-dsp/internal/settings"
	"github.com/tphakala/go-audio-dsp/internal/soundtest"
)

type (
	Channel          = layout.Channel
	Mask             = layout.Mask
	StreamSettings   = layout.StreamSettings
	StreamProperties = layout.StreamProperties
	ModeInfo         = master.ModeInfo

	SettingsStore = settings.Store
	SettingsData  = settings.Data
	FileStore     = settings.FileStore
	MemoryStore   = settings.MemoryStore

	Player        = soundtest.Player
	PlayerFactory = soundtest.PlayerFactory
	SoundLibrary  = soundtest.Library

	ResampleQuality = resample.Quality
)

// ModeStereoDownmix is the id of the surround to stereo master mode.
const ModeStereoDownmix = master.ModeStereoDownmix

// Resampler presets.
const (
	ResampleLinear = resample.QualityLinear
	ResampleQuick  = resample.QualityQuick
	ResampleLow    = resample.QualityLow
	ResampleMedium = resample.QualityMedium
	ResampleHigh   = resample.QualityHigh
)

// Speaker positions.
const (
	FL   = layout.FL
	FR   = layout.FR
	FC   = layout.FC
	LFE  = layout.LFE
	BL   = layout.BL
	BR   = layout.BR
	FLOC = layout.FLOC
	FROC = layout.FROC
	BC   = layout.BC
	SL   = layout.SL
	SR   = layout.SR
	TFL  = layout.TFL
	TFR  = layout.TFR
	TFC  = layout.TFC
	TC   = layout.TC
	TBL  = layout.TBL
	TBR  = layout.TBR
	TBC  = layout.TBC
	BLOC = layout.BLOC
	BROC = layout.BROC

	// ChannelAll addresses every channel in gain and delay setters.
	ChannelAll     = layout.ChannelCount
	ChannelInvalid = layout.Invalid
)

// Stream types.
const (
	StreamTypeBasic = layout.StreamTypeBasic
	StreamTypeMusic = layout.StreamTypeMusic
	StreamTypeMovie = layout.StreamTypeMovie
)

// MaskOf builds a channel mask.
func MaskOf(channels ...Channel) Mask {
	return layout.MaskOf(channels...)
}

// ModeType identifies a pipeline stage in mode queries.
type ModeType int

const (
	ModeTypeInputResample ModeType = iota
	ModeTypePreProcess
	ModeTypeMasterProcess
	ModeTypePostProcess
	ModeTypeOutputResample
)

// Capabilities lists the pipeline stages the registry takes part in.
type Capabilities struct {
	InputProcess   bool
	InputResample  bool
	PreProcess     bool
	MasterProcess  bool
	PostProcess    bool
	OutputResample bool
}

// MenuHook is a configuration entry point registered with the host.
type MenuHook struct {
	ID           int
	Label        int
	ModeID       uint
	NeedPlayback bool
}

// MenuHooks registers configuration entry points with the host. Calls
// must be idempotent on the host side.
type MenuHooks interface {
	AddMenuHook(h MenuHook)
	RemoveMenuHook(h MenuHook)
}

var menuHooks = [...]MenuHook{
	{ID: MenuHookGainSetup, Label: labelGainSetup, ModeID: PostProcessSpeakerCorrection},
	{ID: MenuHookDistanceSetup, Label: labelDistanceSetup, ModeID: PostProcessSpeakerCorrection, NeedPlayback: true},
}

type noopMenuHooks struct{}

func (noopMenuHooks) AddMenuHook(MenuHook)    {}
func (noopMenuHooks) RemoveMenuHook(MenuHook) {}
