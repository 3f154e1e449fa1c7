package audiodsp

import "time"

// MaxStreams is the number of stream slots. Stream ids index the slot
// table directly.
const MaxStreams = 8

// Mode and menu identifiers shared with the host.
const (
	// PostProcessSpeakerCorrection is the post-process mode that applies
	// per-channel gain, clamping and distance delay.
	PostProcessSpeakerCorrection uint = 1400

	MenuHookGainSetup     = 1
	MenuHookDistanceSetup = 2
)

// Setting names accepted by SetSetting.
const (
	SettingSpeakerCorrection = "speaker_correction"
	SettingMasterStereo      = "master_stereo"
)

// Localized string ids.
const (
	labelGainSetup         = 30011
	labelDistanceSetup     = 30012
	labelSpeakerCorrection = 30004
	labelSpeakerCorrDesc   = 30005
)

const (
	// processBlockSize is the block size requested from the host for the
	// input resample stage.
	processBlockSize = 8192

	// maxOutputGain bounds the linear gain of any channel.
	maxOutputGain = 2.0

	// softClampKnee is where the soft clamp leaves the linear region.
	softClampKnee = 0.9

	// MaxChannelDelay bounds a single channel's distance delay.
	MaxChannelDelay = time.Second
)
