package soundtest

import "time"

const (
	noiseGenerators = 32
	noiseSeedMix    = 0x9e3779b97f4a7c15

	// SwitchInterval is how long continuous mode stays on one channel.
	SwitchInterval = 2 * time.Second

	defaultLanguage = "en"
	soundsDir       = "resources/sounds"
	noiseFile       = "Noise.wav"
)
