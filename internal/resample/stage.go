// Package resample converts planar float32 audio between sample rates
// block by block, keeping state across blocks so a stream can be fed in
// arbitrary chunk sizes.
package resample

import (
	"errors"
	"fmt"

	"github.com/tphakala/go-audio-dsp/internal/layout"
)

// ErrInvalidRate is returned for non-positive or out-of-range rates.
var ErrInvalidRate = errors.New("invalid sample rate")

// Stage resamples one channel.
type Stage interface {
	// Process consumes src and writes the produced samples to dst,
	// returning how many were written. dst must hold MaxOutput(len(src)).
	Process(dst, src []float32) int

	// MaxOutput bounds the output of the next Process call for n inputs.
	MaxOutput(n int) int

	Reset()

	// Latency is the group delay in input samples.
	Latency() int

	// Ratio is output rate over input rate.
	Ratio() float64
}

// Quality selects the interpolation method.
type Quality int

const (
	// QualityLinear interpolates between neighbouring samples.
	QualityLinear Quality = iota
	// QualityQuick uses 4-point cubic Hermite interpolation.
	QualityQuick
	// QualityLow uses a short windowed-sinc filter.
	QualityLow
	// QualityMedium is the default windowed-sinc filter.
	QualityMedium
	// QualityHigh uses a long windowed-sinc filter with a narrow transition band.
	QualityHigh
)

func (q Quality) String() string {
	switch q {
	case QualityLinear:
		return "linear"
	case QualityQuick:
		return "quick"
	case QualityLow:
		return "low"
	case QualityMedium:
		return "medium"
	case QualityHigh:
		return "high"
	default:
		return fmt.Sprintf("quality(%d)", int(q))
	}
}

// ParseQuality maps a preset name to a Quality.
func ParseQuality(name string) (Quality, error) {
	for q := QualityLinear; q <= QualityHigh; q++ {
		if q.String() == name {
			return q, nil
		}
	}
	return 0, fmt.Errorf("unknown resample quality %q", name)
}

// NewStage builds a stage converting inRate to outRate.
func NewStage(q Quality, inRate, outRate int) (Stage, error) {
	if inRate <= 0 || outRate <= 0 || inRate > layout.MaxSampleRate || outRate > layout.MaxSampleRate {
		return nil, fmt.Errorf("%w: %d -> %d Hz", ErrInvalidRate, inRate, outRate)
	}
	ratio := float64(outRate) / float64(inRate)

	switch q {
	case QualityLinear:
		return NewLinear(ratio), nil
	case QualityQuick:
		return NewCubic(ratio), nil
	case QualityLow:
		return NewSinc(ratio, SincParams{PassbandEnd: lowPassbandEnd, StopbandBegin: lowStopbandBegin, Attenuation: lowAttenuation})
	case QualityMedium:
		return NewSinc(ratio, SincParams{PassbandEnd: mediumPassbandEnd, StopbandBegin: mediumStopbandBegin, Attenuation: mediumAttenuation})
	case QualityHigh:
		return NewSinc(ratio, SincParams{PassbandEnd: highPassbandEnd, StopbandBegin: highStopbandBegin, Attenuation: highAttenuation})
	default:
		return nil, fmt.Errorf("unknown resample quality %d", int(q))
	}
}
