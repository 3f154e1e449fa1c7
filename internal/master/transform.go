// Package master holds the selectable per-stream transforms that may
// change the channel layout of a stream, such as the stereo downmix.
package master

import (
	"errors"
	"fmt"

	"github.com/tphakala/go-audio-dsp/internal/layout"
)

// Errors returned by transforms and Allocate.
var (
	ErrUnsupported = errors.New("stream settings not supported by transform")
	ErrUnknownMode = errors.New("unknown master mode")
)

// Transform is one master processing mode.
//
// IsSupported must not mutate the receiver; the registry calls it on a
// shared template instance. Process is only called after a successful
// Initialize.
type Transform interface {
	ModeID() uint
	Name() string
	Info() ModeInfo

	IsSupported(settings *layout.StreamSettings, props *layout.StreamProperties) bool
	Initialize(settings *layout.StreamSettings) error
	Deinitialize()

	// Delay reports the latency introduced by the transform in seconds.
	Delay() float64

	// Needed returns the block size the transform requires, or 0 for any.
	Needed() int

	// Process reads n frames from in and writes out. Both are indexed by
	// layout.Channel with nil entries for absent channels.
	Process(in, out [][]float32, n int) int

	// OutChannels reports the layout the transform produces.
	OutChannels() (layout.Mask, int)
}

// ModeInfo describes a mode for host registration. Label fields are
// localized string ids; -1 means none.
type ModeInfo struct {
	ModeID           uint
	Name             string
	NameLabel        int
	DescriptionLabel int
	HelpLabel        int
	SetupLabel       int
	HasSettings      bool
	StreamTypes      []int
}

// Factory builds a fresh transform for streamID.
type Factory func(streamID uint) Transform

var factories = map[uint]Factory{
	ModeStereoDownmix: func(streamID uint) Transform { return NewStereoDownmix(streamID) },
}

// Modes returns the ids of every built-in mode, in ascending order.
func Modes() []uint {
	return []uint{ModeStereoDownmix}
}

// Allocate returns a new instance of modeID for streamID.
func Allocate(streamID, modeID uint) (Transform, error) {
	f, ok := factories[modeID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, modeID)
	}
	return f(streamID), nil
}

// FactoryFor returns the factory for modeID.
func FactoryFor(modeID uint) (Factory, bool) {
	f, ok := factories[modeID]
	return f, ok
}

// base carries the identity shared by all transforms.
type base struct {
	streamID uint
	modeID   uint
	name     string
}

func (b *base) ModeID() uint   { return b.modeID }
func (b *base) Name() string   { return b.name }
func (b *base) StreamID() uint { return b.streamID }
func (b *base) Needed() int    { return 0 }
