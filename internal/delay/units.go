package delay

import (
	"math"
	"time"
)

// round converts seconds to a delay rounded to Resolution.
func round(seconds float64) time.Duration {
	if seconds <= 0 {
		return 0
	}
	us := math.Floor(seconds*float64(time.Second/Resolution) + 0.5)
	return time.Duration(us) * Resolution
}

// FromMeters returns the propagation delay over a speaker distance.
func FromMeters(m float64) time.Duration {
	return round(m / SpeedOfSound)
}

// FromMillimeters returns the propagation delay over a distance in mm.
func FromMillimeters(mm float64) time.Duration {
	return FromMeters(mm / 1000)
}

// FromFeet returns the propagation delay over a distance in feet.
func FromFeet(ft float64) time.Duration {
	return FromMeters(ft / metersToFeet)
}

// FromInches returns the propagation delay over a distance in inches.
func FromInches(in float64) time.Duration {
	return FromMeters(in / metersToInches)
}

// FromMilliseconds converts fractional milliseconds to a delay.
func FromMilliseconds(ms float64) time.Duration {
	return round(ms / 1000)
}

// ToMeters returns the distance sound travels in d.
func ToMeters(d time.Duration) float64 {
	return d.Seconds() * SpeedOfSound
}

// ToFeet returns the distance sound travels in d, in feet.
func ToFeet(d time.Duration) float64 {
	return ToMeters(d) * metersToFeet
}

// ToInches returns the distance sound travels in d, in inches.
func ToInches(d time.Duration) float64 {
	return ToMeters(d) * metersToInches
}

// MaxDistanceDelay is the delay matching MaxSpeakerDistance.
func MaxDistanceDelay() time.Duration {
	return FromMeters(MaxSpeakerDistance)
}
