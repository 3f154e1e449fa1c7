package soundtest

import (
	"os"
	"path/filepath"

	"github.com/tphakala/go-audio-dsp/internal/layout"
)

var channelFiles = map[layout.Channel]string{
	layout.FL: "Front_Left.wav",
	layout.FR: "Front_Right.wav",
	layout.FC: "Front_Center.wav",
	layout.BL: "Rear_Left.wav",
	layout.BR: "Rear_Right.wav",
	layout.BC: "Rear_Center.wav",
	layout.SL: "Side_Left.wav",
	layout.SR: "Side_Right.wav",
}

// Library locates the spoken channel announcements under
// <Dir>/resources/sounds/<Language>/, falling back to English when the
// language has no directory.
type Library struct {
	Dir      string
	Language string
}

// LanguageDir returns the directory announcements are read from.
func (l Library) LanguageDir() string {
	base := filepath.Join(l.Dir, soundsDir)
	if l.Language != "" && l.Language != defaultLanguage {
		dir := filepath.Join(base, l.Language)
		if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
			return dir
		}
	}
	return filepath.Join(base, defaultLanguage)
}

// Path returns the announcement for ch. Channels without a recording use
// the noise sample.
func (l Library) Path(ch layout.Channel) string {
	name, ok := channelFiles[ch]
	if !ok {
		name = noiseFile
	}
	return filepath.Join(l.LanguageDir(), name)
}
