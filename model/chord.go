package model

import "strings"

// Chord is an ordered set of absolute pitches, lowest first.
type Chord []Pitch

// Names returns the scientific pitch names, e.g. [C4 E4 G4].
func (c Chord) Names() []string {
	res := make([]string, 0, len(c))
	for _, p := range c {
		res = append(res, p.String())
	}
	return res
}

func (c Chord) String() string {
	return strings.Join(c.Names(), " ")
}

type Quality int

const (
	Major Quality = iota
	Minor
	Diminished
	Augmented
	Major7
	Minor7
	Dominant7
	HalfDiminished7
	Diminished7
)

var qualityNames = map[Quality]string{
	Major:           "major",
	Minor:           "minor",
	Diminished:      "diminished",
	Augmented:       "augmented",
	Major7:          "major7",
	Minor7:          "minor7",
	Dominant7:       "dominant7",
	HalfDiminished7: "halfDiminished7",
	Diminished7:     "diminished7",
}

// semitones above the chord root
var qualityOffsets = map[Quality][]int{
	Major:           {0, 4, 7},
	Minor:           {0, 3, 7},
	Diminished:      {0, 3, 6},
	Augmented:       {0, 4, 8},
	Major7:          {0, 4, 7, 11},
	Minor7:          {0, 3, 7, 10},
	Dominant7:       {0, 4, 7, 10},
	HalfDiminished7: {0, 3, 6, 10},
	Diminished7:     {0, 3, 6, 9},
}

func (q Quality) String() string {
	if name, ok := qualityNames[q]; ok {
		return name
	}
	return "unknown"
}

// Offsets returns a copy of the quality's intervals. Unknown qualities
// fall back to a major triad.
func (q Quality) Offsets() []int {
	offsets, ok := qualityOffsets[q]
	if !ok {
		offsets = qualityOffsets[Major]
	}
	return append([]int(nil), offsets...)
}

func AllQualities() []Quality {
	return []Quality{Major, Minor, Diminished, Augmented, Major7, Minor7, Dominant7, HalfDiminished7, Diminished7}
}
