package master

// Mode ids as registered with the host.
const (
	ModeStereoDownmix uint = 1300
)

// Downmix matrix.
const (
	downmixGain   = 1.0
	frontWeight   = 1.0
	centerWeight  = 0.707
	surroundMajor = 0.8165
	surroundMinor = 0.5774
	lfeWeight     = 0.5
)

// Localized label ids for the downmix mode.
const (
	downmixNameLabel        = 30000
	downmixDescriptionLabel = 30002
	downmixHelpLabel        = 30003
	noLabel                 = -1
)

// hilbertTaps is the number of non-zero taps of the Hilbert transformer.
const hilbertTaps = 100
