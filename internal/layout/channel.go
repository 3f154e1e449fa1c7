// Package layout defines speaker channel positions, channel masks and the
// per-stream settings negotiated with the host.
package layout

import (
	"math/bits"
	"strings"
)

// Channel is a speaker position. Its value is both the index into planar
// sample blocks and the bit position in a Mask.
type Channel int

// Speaker positions in host order.
const (
	FL Channel = iota
	FR
	FC
	LFE
	BL
	BR
	FLOC
	FROC
	BC
	SL
	SR
	TFL
	TFR
	TFC
	TC
	TBL
	TBR
	TBC
	BLOC
	BROC

	// ChannelCount is the number of speaker positions. As a gain or delay
	// target it addresses every channel at once.
	ChannelCount
)

// Invalid marks "no channel".
const Invalid Channel = -1

var channelNames = [ChannelCount]string{
	"FL", "FR", "FC", "LFE", "BL", "BR", "FLOC", "FROC", "BC", "SL",
	"SR", "TFL", "TFR", "TFC", "TC", "TBL", "TBR", "TBC", "BLOC", "BROC",
}

// Valid reports whether c names a real speaker position.
func (c Channel) Valid() bool {
	return c >= 0 && c < ChannelCount
}

// Bit returns the mask bit of c, or 0 for an invalid channel.
func (c Channel) Bit() Mask {
	if !c.Valid() {
		return 0
	}
	return Mask(1) << uint(c)
}

func (c Channel) String() string {
	if !c.Valid() {
		return "INVALID"
	}
	return channelNames[c]
}

// ParseChannel maps a short name such as "FL" or "lfe" to its Channel.
func ParseChannel(name string) (Channel, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for i, n := range channelNames {
		if n == name {
			return Channel(i), true
		}
	}
	return Invalid, false
}

// Mask is a set of present channels.
type Mask uint32

// AllChannels has a bit for every speaker position.
const AllChannels Mask = 1<<uint(ChannelCount) - 1

// MaskOf builds a mask from channels.
func MaskOf(channels ...Channel) Mask {
	var m Mask
	for _, c := range channels {
		m |= c.Bit()
	}
	return m
}

// Has reports whether c is present.
func (m Mask) Has(c Channel) bool {
	return c.Valid() && m&c.Bit() != 0
}

// Count returns the number of present channels.
func (m Mask) Count() int {
	return bits.OnesCount32(uint32(m & AllChannels))
}

// Channels lists present channels in index order.
func (m Mask) Channels() []Channel {
	out := make([]Channel, 0, m.Count())
	for c := range ChannelCount {
		if m.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

func (m Mask) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, c := range m.Channels() {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(c.String())
	}
	sb.WriteByte('}')
	return sb.String()
}

// calibrationOrder walks the room clockwise starting front-left, through
// the front, right side, rear and left side, then top-center and LFE.
var calibrationOrder = [ChannelCount]Channel{
	FL, TFL, FLOC, FC, TFC, FROC, TFR, FR, SR, BR,
	TBR, BROC, BC, TBC, BLOC, TBL, BL, SL, TC, LFE,
}

// calibrationPos is the inverse of calibrationOrder.
var calibrationPos = func() [ChannelCount]int {
	var pos [ChannelCount]int
	for i, c := range calibrationOrder {
		pos[c] = i
	}
	return pos
}()

// NextPresent returns the first channel present in m that follows prev in
// calibration order, wrapping once around the ring. It returns FL when
// prev is invalid or nothing after prev is present.
func NextPresent(m Mask, prev Channel) Channel {
	if !prev.Valid() {
		return FL
	}
	start := calibrationPos[prev]
	for step := 1; step <= len(calibrationOrder); step++ {
		c := calibrationOrder[(start+step)%len(calibrationOrder)]
		if m.Has(c) {
			return c
		}
	}
	return FL
}
