package midi

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/jsphweid/harmondrill/model"
	"github.com/jsphweid/harmondrill/util"
)

// TimedChord is a chord found in a MIDI file and when it starts.
type TimedChord struct {
	At    time.Duration
	Chord model.Chord
}

func ReadMidiFile(filepath string) (s *smf.SMF, e error) {
	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r, ok := recover().(string); ok {
			e = errors.New(r)
		}
	}()

	dat, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("reading midi file: %w", err)
	}
	return ReadMidi(bytes.NewReader(dat))
}

func ReadMidi(r io.Reader) (*smf.SMF, error) {
	res, err := smf.ReadFrom(r)
	if err != nil {
		return nil, fmt.Errorf("parsing midi file: %w", err)
	}
	return res, nil
}

// Chords groups note starts that share a timestamp into chords, in time
// order. Note ends are ignored: a chord is what was struck together.
func Chords(s *smf.SMF) []TimedChord {
	starts := make(map[int64]map[uint8]bool)

	for _, events := range s.Tracks {
		var absTicks int64
		for _, event := range events {
			absTicks += int64(event.Delta)
			var channel, key, velocity uint8
			if event.Message.GetNoteStart(&channel, &key, &velocity) {
				// microseconds
				absTime := s.TimeAt(absTicks)
				if starts[absTime] == nil {
					starts[absTime] = make(map[uint8]bool)
				}
				starts[absTime][key] = true
			}
		}
	}

	var res []TimedChord
	for at, keys := range starts {
		var chord model.Chord
		for key := range keys {
			chord = append(chord, model.Pitch(key))
		}
		sort.Slice(chord, func(i, j int) bool {
			return chord[i] < chord[j]
		})
		res = append(res, TimedChord{At: time.Duration(at) * time.Microsecond, Chord: chord})
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].At < res[j].At
	})
	return res
}

// velocity in 0..1 to a MIDI velocity, never 0 since that reads as a note off
func midiVelocity(v float64) uint8 {
	return uint8(util.Clamp(int(v*127+0.5), 1, 127))
}
