package delay

import "time"

const (
	// Resolution is the granularity of configured delays.
	Resolution = time.Microsecond

	// MaxDelay bounds a single channel's correction delay.
	MaxDelay = time.Second

	// MaxSpeakerDistance is the largest speaker distance in meters the
	// setup accepts.
	MaxSpeakerDistance = 60.0

	// SpeedOfSound in m/s at roughly 0 °C.
	SpeedOfSound = 331.451

	metersToInches = 39.370078
	metersToFeet   = 3.2808399

	// growthSlack is added to the requested delay when the ring has to be
	// reallocated, so small adjustments reuse the buffer.
	growthSlack = time.Millisecond
)
