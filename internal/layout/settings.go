package layout

import (
	"errors"
	"fmt"
)

// ErrInvalidSettings is returned when negotiated stream settings are unusable.
var ErrInvalidSettings = errors.New("invalid stream settings")

// Stream types reported by the host.
const (
	StreamTypeBasic = iota
	StreamTypeMusic
	StreamTypeMovie
)

// Upper bound for any negotiated sample rate.
const MaxSampleRate = 192000

// StreamSettings carries the parameters negotiated for one audio stream.
// The host may renegotiate them through a re-initialization.
type StreamSettings struct {
	StreamID   uint
	StreamType int

	InChannels   int
	InMask       Mask
	InFrames     int
	InSampleRate int

	ProcessFrames     int
	ProcessSampleRate int

	OutFrames     int
	OutSampleRate int
	OutChannels   int
	OutMask       Mask

	StereoUpmix bool
}

// Validate checks rates, channel counts and masks.
func (s *StreamSettings) Validate() error {
	if s.InSampleRate <= 0 || s.OutSampleRate <= 0 {
		return fmt.Errorf("%w: sample rates must be positive", ErrInvalidSettings)
	}
	if s.InSampleRate > MaxSampleRate || s.OutSampleRate > MaxSampleRate {
		return fmt.Errorf("%w: sample rate above %d Hz", ErrInvalidSettings, MaxSampleRate)
	}
	if s.ProcessSampleRate < 0 || s.ProcessSampleRate > MaxSampleRate {
		return fmt.Errorf("%w: process sample rate %d out of range", ErrInvalidSettings, s.ProcessSampleRate)
	}
	if s.InChannels < 1 || s.InChannels > int(ChannelCount) {
		return fmt.Errorf("%w: input channels %d not in 1..%d", ErrInvalidSettings, s.InChannels, ChannelCount)
	}
	if s.OutChannels < 1 || s.OutChannels > int(ChannelCount) {
		return fmt.Errorf("%w: output channels %d not in 1..%d", ErrInvalidSettings, s.OutChannels, ChannelCount)
	}
	if s.InMask&^AllChannels != 0 || s.OutMask&^AllChannels != 0 {
		return fmt.Errorf("%w: channel mask has bits beyond %d channels", ErrInvalidSettings, ChannelCount)
	}
	if s.InFrames < 0 || s.ProcessFrames < 0 || s.OutFrames < 0 {
		return fmt.Errorf("%w: frame counts must not be negative", ErrInvalidSettings)
	}
	return nil
}

// StreamProperties is the immutable identity of a stream.
type StreamProperties struct {
	StreamType int
	BaseType   int
	Name       string
	CodecID    string
	Language   string
	Identifier int
	Channels   int
	SampleRate int
}
