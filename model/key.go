package model

import "fmt"

// Key is the tonic of a major scale: a pitch class plus an octave.
type Key struct {
	Root   PitchClass
	Octave int
}

// Pitch is the tonic as an absolute pitch, e.g. C4 -> 60.
func (k Key) Pitch() Pitch {
	return Pitch((k.Octave+1)*12 + floorMod(int(k.Root), 12))
}

func (k Key) String() string {
	return fmt.Sprintf("%v%d", k.Root, k.Octave)
}

// Progression is the answer key of an exercise: roman numeral symbols in order.
type Progression []string
