package constants

import (
	"os"
	"path/filepath"
	"time"
)

const AppName = "harmondrill"

// env vars are HARMONDRILL_<KEY>, e.g. HARMONDRILL_MIDI_PORT
const EnvPrefix = "HARMONDRILL"

// Synth envelope. Release also pads the end of every progression so the
// last chord rings out before playback reports completion.
const (
	EnvelopeAttack  = 20 * time.Millisecond
	EnvelopeDecay   = 100 * time.Millisecond
	EnvelopeSustain = 0.3
	EnvelopeRelease = 1 * time.Second

	SynthVolumeDB = -10.0
)

const (
	DefaultChordDuration = 1000 * time.Millisecond
	DefaultChordGap      = 0

	// an eighth note at 120 BPM, used for click feedback
	ClickChordDuration = 250 * time.Millisecond
)

const (
	SampleRate = 44100
	BitDepth   = 16

	// 960 ticks per quarter at 120 BPM in exported MIDI files
	TicksPerQuarter = 960
	ExportTempoBPM  = 120
)

var AllChords = []string{"I", "ii", "iii", "IV", "V", "vi", "vii°"}

// circle of fifths, flats spelled the way players read them
var KeyRoots = []string{"C", "G", "D", "A", "E", "B", "F", "Bb", "Eb", "Ab", "Db", "Gb"}

var AllOctaves = []int{2, 3, 4, 5}

func GetConfigDir() string {
	path := os.Getenv(EnvPrefix + "_CONFIG_DIR")
	if path != "" {
		return path
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, AppName)
}
