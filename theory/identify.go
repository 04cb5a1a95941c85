package theory

import (
	"sort"

	"github.com/jsphweid/harmondrill/constants"
	"github.com/jsphweid/harmondrill/model"
)

// Identify names the diatonic chord of key whose pitch classes are
// exactly those of pitches, regardless of voicing or octave. Triads are
// tried before sevenths; seventh chords are named with a trailing "7".
func Identify(pitches []model.Pitch, key model.Key) (string, bool) {
	if len(pitches) == 0 {
		return "", false
	}
	played := classSet(pitches)

	for _, sevenths := range []bool{false, true} {
		for _, symbol := range constants.AllChords {
			if !sameClasses(played, classSet(ResolveChord(symbol, key, sevenths))) {
				continue
			}
			if sevenths {
				return symbol + "7", true
			}
			return symbol, true
		}
	}
	return "", false
}

func classSet(pitches []model.Pitch) []model.PitchClass {
	seen := make(map[model.PitchClass]bool, len(pitches))
	res := make([]model.PitchClass, 0, len(pitches))
	for _, p := range pitches {
		pc := p.Class()
		if seen[pc] {
			continue
		}
		seen[pc] = true
		res = append(res, pc)
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}

func sameClasses(a, b []model.PitchClass) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
