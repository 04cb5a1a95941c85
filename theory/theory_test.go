package theory

import (
	"fmt"
	"testing"

	"github.com/jsphweid/harmondrill/model"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

var c4 = model.Key{Root: 0, Octave: 4}

func TestDegreeLongestPrefix(t *testing.T) {
	cases := map[string]int{
		"I":    0,
		"ii":   1,
		"iii":  2,
		"IV":   3,
		"V":    4,
		"V7":   4,
		"vi":   5,
		"vii°": 6,
		"viiø": 6,
		"VII":  6,
	}
	for symbol, want := range cases {
		t.Run(symbol, func(t *testing.T) {
			assert.Equal(t, want, Degree(symbol))
		})
	}
}

func TestQualityTable(t *testing.T) {
	cases := []struct {
		degree  int
		triad   model.Quality
		seventh model.Quality
	}{
		{0, model.Major, model.Major7},
		{1, model.Minor, model.Minor7},
		{2, model.Minor, model.Minor7},
		{3, model.Major, model.Major7},
		{4, model.Major, model.Dominant7},
		{5, model.Minor, model.Minor7},
		{6, model.Diminished, model.HalfDiminished7},
	}

	assert := assert.New(t)
	for _, c := range cases {
		assert.Equal(c.triad, QualityFor(c.degree, false), "degree %d", c.degree)
		assert.Equal(c.seventh, QualityFor(c.degree, true), "degree %d with sevenths", c.degree)
	}
}

func TestQualityOffsetsAscendFromZero(t *testing.T) {
	for _, q := range model.AllQualities() {
		offsets := q.Offsets()
		assert.Equal(t, 0, offsets[0], q.String())
		for i := 1; i < len(offsets); i++ {
			assert.Greater(t, offsets[i], offsets[i-1], q.String())
		}
	}
}

func TestResolveProgressionInC4(t *testing.T) {
	chords := ResolveProgression(model.Progression{"I", "IV", "V", "I"}, c4, false)

	var names [][]string
	for _, c := range chords {
		names = append(names, c.Names())
	}
	assert.Equal(t, [][]string{
		{"C4", "E4", "G4"},
		{"F4", "A4", "C5"},
		{"G4", "B4", "D5"},
		{"C4", "E4", "G4"},
	}, names)
}

func TestResolveSevenths(t *testing.T) {
	assert := assert.New(t)
	assert.Equal([]string{"G4", "B4", "D5", "F5"}, ResolveChord("V", c4, true).Names())
	assert.Equal([]string{"B4", "D5", "F5", "A5"}, ResolveChord("vii°", c4, true).Names())
	assert.Equal([]string{"D4", "F4", "A4", "C5"}, ResolveChord("ii", c4, true).Names())
}

func TestUnrecognizedSymbolResolvesToTonic(t *testing.T) {
	// lenient on purpose: garbage symbols are the I chord, never an error
	key := MustParseKey("Eb3")
	for _, sevenths := range []bool{false, true} {
		tonic := ResolveChord("I", key, sevenths)
		for _, symbol := range []string{"", "X", "hello", "°"} {
			assert.Equal(t, tonic, ResolveChord(symbol, key, sevenths), "%q sevenths=%v", symbol, sevenths)
		}
	}
}

func TestExtremeOctavesDoNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		ResolveChord("vii", model.Key{Root: 11, Octave: 12}, true)
		ResolveChord("ii", model.Key{Root: 0, Octave: -3}, false)
	})
	assert.Equal(t, "B-2", ResolveChord("vii", model.Key{Root: 0, Octave: -2}, false)[0].String())
}

func TestProperty_ResolvedChordShape(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		degree := rapid.IntRange(0, 6).Draw(t, "degree")
		sevenths := rapid.Bool().Draw(t, "sevenths")
		key := model.Key{
			Root:   model.PitchClass(rapid.IntRange(0, 11).Draw(t, "root")),
			Octave: rapid.IntRange(-1, 9).Draw(t, "octave"),
		}
		symbol := []string{"I", "ii", "iii", "IV", "V", "vi", "vii°"}[degree]

		chord := ResolveChord(symbol, key, sevenths)

		wantLen := 3
		if sevenths {
			wantLen = 4
		}
		if len(chord) != wantLen {
			t.Fatalf("len = %d, want %d", len(chord), wantLen)
		}
		if want := key.Pitch() + model.Pitch(MajorScaleOffsets[degree]); chord[0] != want {
			t.Fatalf("root = %v, want %v", chord[0], want)
		}
		for i := 1; i < len(chord); i++ {
			if chord[i] <= chord[i-1] {
				t.Fatalf("not ascending: %v", chord)
			}
		}
	})
}

func TestParsePitch(t *testing.T) {
	cases := map[string]model.Pitch{
		"C4":   60,
		"c4":   60,
		"A4":   69,
		"Bb3":  58,
		"A#3":  58,
		"C-1":  0,
		"B#3":  60,
		"Cb4":  59,
		"G9":   127,
		"F##4": 67,
	}
	for name, want := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := ParsePitch(name)
			assert.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestParseKeyErrors(t *testing.T) {
	for _, name := range []string{"", "C", "H4", "Cx4", "4"} {
		t.Run(fmt.Sprintf("%q", name), func(t *testing.T) {
			_, err := ParseKey(name)
			assert.Error(t, err)
		})
	}
}

func TestPitchNamesRoundTrip(t *testing.T) {
	for p := model.Pitch(0); p <= 127; p++ {
		got, err := ParsePitch(p.String())
		assert.NoError(t, err)
		assert.Equal(t, p, got)
	}
}
