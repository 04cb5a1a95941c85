// Package exercise generates randomized progressions and scores the
// user's attempt to name them by ear.
package exercise

import (
	"fmt"
	"math/rand"
	"slices"

	"github.com/google/uuid"

	"github.com/jsphweid/harmondrill/constants"
	"github.com/jsphweid/harmondrill/model"
	"github.com/jsphweid/harmondrill/theory"
	"github.com/jsphweid/harmondrill/util"
)

// RandomKey picks a new key root and octave for every exercise.
const RandomKey = "Random"

type Settings struct {
	Length        int      `mapstructure:"length" json:"length"`
	StartOnRoot   bool     `mapstructure:"start_on_root" json:"start_on_root"`
	AllowedChords []string `mapstructure:"allowed_chords" json:"allowed_chords"`
	// RandomKey or a pitch class such as "Eb"
	Key string `mapstructure:"key" json:"key"`
	// octave pool for random keys
	Octaves     []int `mapstructure:"octaves" json:"octaves"`
	FixedOctave int   `mapstructure:"fixed_octave" json:"fixed_octave"`
	UseSevenths bool  `mapstructure:"use_sevenths" json:"use_sevenths"`
	PlayOnClick bool  `mapstructure:"play_on_click" json:"play_on_click"`
}

func DefaultSettings() Settings {
	return Settings{
		Length:        4,
		StartOnRoot:   true,
		AllowedChords: append([]string(nil), constants.AllChords...),
		Key:           RandomKey,
		Octaves:       []int{3, 4},
		FixedOctave:   4,
	}
}

func (s Settings) Validate() error {
	if s.Length < 1 {
		return fmt.Errorf("exercise length must be at least 1, got %d", s.Length)
	}
	if s.Key != RandomKey {
		if _, err := theory.ParsePitchClass(s.Key); err != nil {
			return fmt.Errorf("exercise key: %w", err)
		}
	}
	if !slices.Contains(constants.AllOctaves, s.FixedOctave) {
		return fmt.Errorf("exercise fixed_octave must be one of %v, got %d", constants.AllOctaves, s.FixedOctave)
	}
	for _, octave := range s.Octaves {
		if !slices.Contains(constants.AllOctaves, octave) {
			return fmt.Errorf("exercise octaves must be within %v, got %d", constants.AllOctaves, octave)
		}
	}
	return nil
}

type Generator struct {
	settings Settings
	rand     *rand.Rand
}

func NewGenerator(settings Settings, r *rand.Rand) *Generator {
	if r == nil {
		r = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Generator{settings: settings, rand: r}
}

func (g *Generator) Settings() Settings {
	return g.settings
}

// Generate builds the next exercise. With StartOnRoot the first chord is
// always I; the rest are drawn from AllowedChords (all chords if empty).
func (g *Generator) Generate() (model.Exercise, error) {
	if err := g.settings.Validate(); err != nil {
		return model.Exercise{}, err
	}

	pool := util.OrDefault(g.settings.AllowedChords, constants.AllChords)
	progression := make(model.Progression, 0, g.settings.Length)
	for i := 0; i < g.settings.Length; i++ {
		if i == 0 && g.settings.StartOnRoot {
			progression = append(progression, "I")
			continue
		}
		progression = append(progression, util.Choose(g.rand, pool))
	}

	key, err := g.pickKey()
	if err != nil {
		return model.Exercise{}, err
	}

	return model.Exercise{
		ID:          uuid.New().String(),
		Progression: progression,
		Key:         key,
		UseSevenths: g.settings.UseSevenths,
	}, nil
}

func (g *Generator) pickKey() (model.Key, error) {
	root := g.settings.Key
	octave := g.settings.FixedOctave
	if root == RandomKey {
		root = util.Choose(g.rand, constants.KeyRoots)
		octave = util.Choose(g.rand, util.OrDefault(g.settings.Octaves, []int{4}))
	}
	class, err := theory.ParsePitchClass(root)
	if err != nil {
		return model.Key{}, err
	}
	return model.Key{Root: class, Octave: octave}, nil
}
