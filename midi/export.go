package midi

import (
	"fmt"
	"io"
	"os"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/jsphweid/harmondrill/constants"
	"github.com/jsphweid/harmondrill/model"
)

// Timing is how long each chord sounds and the silence between chords.
type Timing struct {
	Duration time.Duration
	Gap      time.Duration
}

func ticks(d time.Duration) uint32 {
	quarter := time.Minute / constants.ExportTempoBPM
	return uint32(int64(d) * constants.TicksPerQuarter / int64(quarter))
}

// Create builds a single track SMF that strikes each chord in turn.
func Create(chords []model.Chord, timing Timing, velocity float64) (*smf.SMF, error) {
	var track smf.Track
	track.Add(0, smf.MetaTempo(constants.ExportTempoBPM))

	vel := midiVelocity(velocity)
	var delta uint32
	for i, chord := range chords {
		if i > 0 {
			delta += ticks(timing.Gap)
		}
		for _, p := range chord {
			if !p.InMidiRange() {
				continue
			}
			track.Add(delta, gomidi.NoteOn(0, uint8(p), vel))
			delta = 0
		}
		delta += ticks(timing.Duration)
		for _, p := range chord {
			if !p.InMidiRange() {
				continue
			}
			track.Add(delta, gomidi.NoteOff(0, uint8(p)))
			delta = 0
		}
	}
	track.Close(delta)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(constants.TicksPerQuarter)
	if err := s.Add(track); err != nil {
		return nil, fmt.Errorf("adding track: %w", err)
	}
	return s, nil
}

func WriteProgression(w io.Writer, chords []model.Chord, timing Timing, velocity float64) error {
	s, err := Create(chords, timing, velocity)
	if err != nil {
		return err
	}
	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("writing midi: %w", err)
	}
	return nil
}

func WriteProgressionFile(path string, chords []model.Chord, timing Timing, velocity float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %v: %w", path, err)
	}
	defer f.Close()

	if err := WriteProgression(f, chords, timing, velocity); err != nil {
		return err
	}
	return f.Close()
}
