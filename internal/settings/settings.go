// Package settings persists the per-channel speaker corrections in the
// add-on's XML settings file.
package settings

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/tphakala/go-audio-dsp/internal/layout"
)

// FileName is the settings file inside the profile directory.
const FileName = "ADSPBasicAddonSettings.xml"

const rootElement = "adspBasic"

var (
	// ErrNotExist is returned by Load when no settings were saved yet.
	ErrNotExist = errors.New("settings file does not exist")

	// ErrInvalidData is returned when stored settings cannot be decoded.
	ErrInvalidData = errors.New("invalid settings data")
)

// Channel holds the corrections for one speaker.
type Channel struct {
	// Number is the channel index, or -1 when the slot was never stored.
	Number int
	Name   string

	// VolumeDB is the gain correction in whole decibels.
	VolumeDB int

	// DistanceUS is the delay correction in microseconds.
	DistanceUS int
}

// Data is the full settings record.
type Data struct {
	Channels [layout.ChannelCount]Channel

	SpeakerCorrection bool
	MasterStereo      bool
}

// Default returns settings with no corrections and both features enabled.
func Default() *Data {
	d := &Data{SpeakerCorrection: true, MasterStereo: true}
	for i := range d.Channels {
		d.Channels[i].Number = i
	}
	return d
}

// Store loads and saves settings.
type Store interface {
	Load() (*Data, error)
	Save(d *Data) error
}

type xmlFile struct {
	XMLName  xml.Name     `xml:"adspBasic"`
	Channels []xmlChannel `xml:"channels>channel"`
	Flags    *xmlFlags    `xml:"flags,omitempty"`
}

type xmlChannel struct {
	Number   *int   `xml:"number"`
	Name     string `xml:"name"`
	Volume   int    `xml:"volume"`
	Distance int    `xml:"distance"`
}

type xmlFlags struct {
	SpeakerCorrection *bool `xml:"speakerCorrection"`
	MasterStereo      *bool `xml:"masterStereo"`
}

// Decode parses a settings document.
func Decode(b []byte) (*Data, error) {
	var doc xmlFile
	if err := xml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidData, err)
	}

	d := &Data{SpeakerCorrection: true, MasterStereo: true}
	for i := range d.Channels {
		d.Channels[i].Number = -1
	}
	for _, c := range doc.Channels {
		if c.Number == nil || !layout.Channel(*c.Number).Valid() {
			continue
		}
		d.Channels[*c.Number] = Channel{
			Number:     *c.Number,
			Name:       c.Name,
			VolumeDB:   c.Volume,
			DistanceUS: c.Distance,
		}
	}
	if doc.Flags != nil {
		if doc.Flags.SpeakerCorrection != nil {
			d.SpeakerCorrection = *doc.Flags.SpeakerCorrection
		}
		if doc.Flags.MasterStereo != nil {
			d.MasterStereo = *doc.Flags.MasterStereo
		}
	}
	return d, nil
}

// Encode renders d as a settings document. Every channel slot is written
// with its index as the number.
func Encode(d *Data) ([]byte, error) {
	doc := xmlFile{
		Channels: make([]xmlChannel, len(d.Channels)),
		Flags: &xmlFlags{
			SpeakerCorrection: &d.SpeakerCorrection,
			MasterStereo:      &d.MasterStereo,
		},
	}
	for i, c := range d.Channels {
		n := i
		doc.Channels[i] = xmlChannel{Number: &n, Name: c.Name, Volume: c.VolumeDB, Distance: c.DistanceUS}
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// FileStore keeps settings in FileName under Dir.
type FileStore struct {
	Dir string
}

// Path returns the settings file location.
func (s FileStore) Path() string {
	return filepath.Join(s.Dir, FileName)
}

// Load reads the settings file.
func (s FileStore) Load() (*Data, error) {
	b, err := os.ReadFile(s.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotExist, s.Path())
	}
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	d, err := Decode(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path(), err)
	}
	return d, nil
}

// Save writes the settings file through a temporary file and rename.
func (s FileStore) Save(d *Data) error {
	b, err := Encode(d)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.Dir, FileName+".*")
	if err != nil {
		return fmt.Errorf("create settings file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path()); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}

// MemoryStore keeps settings in memory. The zero value behaves like an
// absent file.
type MemoryStore struct {
	mu    sync.Mutex
	data  *Data
	saves int
}

// Load returns a copy of the stored settings.
func (m *MemoryStore) Load() (*Data, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, ErrNotExist
	}
	d := *m.data
	return &d, nil
}

// Save stores a copy of d.
func (m *MemoryStore) Save(d *Data) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *d
	m.data = &c
	m.saves++
	return nil
}

// Saves returns how many times Save was called.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

var channelLabels = [layout.ChannelCount]int{
	layout.FL: 30031, layout.FR: 30032, layout.FC: 30037, layout.LFE: 30038,
	layout.BL: 30035, layout.BR: 30036, layout.FLOC: 30052, layout.FROC: 30053,
	layout.BC: 30039, layout.SL: 30033, layout.SR: 30034, layout.TFL: 30054,
	layout.TFR: 30055, layout.TFC: 30056, layout.TC: 30057, layout.TBL: 30063,
	layout.TBR: 30064, layout.TBC: 30060, layout.BLOC: 30061, layout.BROC: 30062,
}

// ChannelLabel returns the localized string id naming ch, or -1.
func ChannelLabel(ch layout.Channel) int {
	if !ch.Valid() {
		return -1
	}
	return channelLabels[ch]
}
