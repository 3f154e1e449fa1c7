package mathutil

import "math"

// DBToGain converts a level in dB to a linear amplitude factor. Levels at
// or below SilenceDB map to 0.
func DBToGain(db float64) float64 {
	if db <= SilenceDB {
		return 0
	}
	return math.Pow(10, db/dbPerDecade)
}

// GainToDB converts a linear amplitude factor to dB. Non-positive gains
// map to SilenceDB.
func GainToDB(g float64) float64 {
	if g <= 0 {
		return SilenceDB
	}
	return math.Max(dbPerDecade*math.Log10(g), SilenceDB)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
