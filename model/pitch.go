package model

import "fmt"

// Pitch is a MIDI note number. C4 (middle C) is 60.
type Pitch int

// PitchClass is a pitch with the octave removed, 0 (C) through 11 (B).
type PitchClass int

var sharpNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

func (pc PitchClass) String() string {
	return sharpNames[floorMod(int(pc), 12)]
}

func (p Pitch) Class() PitchClass {
	return PitchClass(floorMod(int(p), 12))
}

// Octave follows scientific pitch notation, so MIDI 0 is C-1.
func (p Pitch) Octave() int {
	return floorDiv(int(p), 12) - 1
}

func (p Pitch) String() string {
	return fmt.Sprintf("%v%d", p.Class(), p.Octave())
}

func (p Pitch) Transpose(semitones int) Pitch {
	return p + Pitch(semitones)
}

// InMidiRange reports whether the pitch can be sent as a MIDI key.
func (p Pitch) InMidiRange() bool {
	return p >= 0 && p <= 127
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}
