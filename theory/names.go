package theory

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jsphweid/harmondrill/model"
)

var letterClasses = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

// ParsePitchClass accepts a letter with any number of sharps ('#') or
// flats ('b'), e.g. "C", "F#", "Bb".
func ParsePitchClass(name string) (model.PitchClass, error) {
	if name == "" {
		return 0, fmt.Errorf("empty pitch class")
	}
	class, ok := letterClasses[strings.ToUpper(name[:1])[0]]
	if !ok {
		return 0, fmt.Errorf("invalid pitch letter in %q", name)
	}
	for _, r := range name[1:] {
		switch r {
		case '#', '♯':
			class++
		case 'b', '♭':
			class--
		default:
			return 0, fmt.Errorf("invalid accidental %q in %q", r, name)
		}
	}
	return model.PitchClass(((class % 12) + 12) % 12), nil
}

// splitOctave separates "Bb-1" into "Bb" and -1.
func splitOctave(name string) (string, int, error) {
	i := strings.IndexFunc(name, func(r rune) bool {
		return r == '-' || (r >= '0' && r <= '9')
	})
	if i <= 0 {
		return "", 0, fmt.Errorf("missing octave in %q", name)
	}
	octave, err := strconv.Atoi(name[i:])
	if err != nil {
		return "", 0, fmt.Errorf("invalid octave in %q: %w", name, err)
	}
	return name[:i], octave, nil
}

// ParsePitch parses scientific pitch notation, e.g. "C4" -> 60.
// Accidentals are applied after the octave, so "B#3" is C4.
func ParsePitch(name string) (model.Pitch, error) {
	key, err := ParseKey(name)
	if err != nil {
		return 0, err
	}
	letter := letterClasses[strings.ToUpper(name[:1])[0]]
	accidental := int(key.Root) - letter
	// undo the wrap ParsePitchClass applied so Cb4 stays below C4
	for accidental > 6 {
		accidental -= 12
	}
	for accidental < -6 {
		accidental += 12
	}
	base := model.Key{Root: model.PitchClass(letter), Octave: key.Octave}.Pitch()
	return base.Transpose(accidental), nil
}

// ParseKey parses a key root with its octave, e.g. "Eb3".
func ParseKey(name string) (model.Key, error) {
	name = strings.TrimSpace(name)
	className, octave, err := splitOctave(name)
	if err != nil {
		return model.Key{}, err
	}
	class, err := ParsePitchClass(className)
	if err != nil {
		return model.Key{}, err
	}
	return model.Key{Root: class, Octave: octave}, nil
}

func MustParseKey(name string) model.Key {
	key, err := ParseKey(name)
	if err != nil {
		panic(err)
	}
	return key
}
