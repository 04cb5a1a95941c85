// Package theory maps roman numeral symbols to concrete pitches in a
// major key. Everything here is pure: no state, no I/O, no errors for
// unrecognized symbols.
package theory

import (
	"strings"

	"github.com/jsphweid/harmondrill/model"
)

// MajorScaleOffsets are the semitones above the tonic for each scale degree.
var MajorScaleOffsets = [7]int{0, 2, 4, 5, 7, 9, 11}

// longest prefix first so "VII" wins over "VI" and "V", "IV" over "I"
var numeralPrefixes = []struct {
	prefix string
	degree int
}{
	{"VII", 6},
	{"VI", 5},
	{"IV", 3},
	{"V", 4},
	{"III", 2},
	{"II", 1},
	{"I", 0},
}

// Degree returns the 0-indexed scale degree named by the leading numeral
// of symbol, case-insensitively. Anything unrecognized is the tonic.
func Degree(symbol string) int {
	upper := strings.ToUpper(symbol)
	for _, n := range numeralPrefixes {
		if strings.HasPrefix(upper, n.prefix) {
			return n.degree
		}
	}
	return 0
}

// QualityFor is the diatonic chord quality built on a major scale degree.
func QualityFor(degree int, useSevenths bool) model.Quality {
	switch degree {
	case 1, 2, 5:
		if useSevenths {
			return model.Minor7
		}
		return model.Minor
	case 4:
		if useSevenths {
			return model.Dominant7
		}
		return model.Major
	case 6:
		if useSevenths {
			return model.HalfDiminished7
		}
		return model.Diminished
	default:
		if useSevenths {
			return model.Major7
		}
		return model.Major
	}
}

// DegreeRoot is the absolute root pitch of a scale degree in key.
func DegreeRoot(degree int, key model.Key) model.Pitch {
	if degree < 0 || degree >= len(MajorScaleOffsets) {
		degree = 0
	}
	return key.Pitch().Transpose(MajorScaleOffsets[degree])
}

// ResolveChord stacks the diatonic quality of symbol's degree on top of
// the degree's root. Pitches are not range-checked: extreme octaves may
// land outside what an instrument can play.
func ResolveChord(symbol string, key model.Key, useSevenths bool) model.Chord {
	degree := Degree(symbol)
	root := DegreeRoot(degree, key)
	offsets := QualityFor(degree, useSevenths).Offsets()

	chord := make(model.Chord, 0, len(offsets))
	for _, offset := range offsets {
		chord = append(chord, root.Transpose(offset))
	}
	return chord
}

func ResolveProgression(progression model.Progression, key model.Key, useSevenths bool) []model.Chord {
	res := make([]model.Chord, 0, len(progression))
	for _, symbol := range progression {
		res = append(res, ResolveChord(symbol, key, useSevenths))
	}
	return res
}
