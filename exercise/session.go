package exercise

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/jsphweid/harmondrill/constants"
	"github.com/jsphweid/harmondrill/model"
	"github.com/jsphweid/harmondrill/theory"
)

var (
	ErrNoExercise  = errors.New("no exercise generated yet")
	ErrNotGuessing = errors.New("answers are locked until the next exercise")
	ErrSlotLocked  = errors.New("the first chord is fixed to the tonic")
	ErrNoSuchSlot  = errors.New("slot has no answer to edit")
)

type State int

const (
	Idle State = iota
	Playing
	Guessing
	Revealed
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Guessing:
		return "guessing"
	case Revealed:
		return "revealed"
	default:
		return "idle"
	}
}

// ChordPlayer sounds a chord right away, for click feedback.
type ChordPlayer interface {
	PlaySingleChord(chord model.Chord, d time.Duration)
}

// Snapshot is the session state at one instant.
type Snapshot struct {
	ExerciseID string           `json:"exercise_id"`
	State      string           `json:"state"`
	Length     int              `json:"length"`
	Answer     []string         `json:"answer"`
	Editing    int              `json:"editing"`
	Feedback   []model.Feedback `json:"feedback,omitempty"`
	Score      model.Score      `json:"score"`
}

type Session struct {
	mu       sync.Mutex
	gen      *Generator
	player   ChordPlayer
	exercise *model.Exercise
	answer   []string
	editing  int
	feedback []model.Feedback
	score    model.Score
	state    State
	// identifies the latest PlaybackStarted
	playback int
}

// NewSession keeps score across exercises. player may be nil.
func NewSession(settings Settings, r *rand.Rand, player ChordPlayer) *Session {
	return &Session{
		gen:     NewGenerator(settings, r),
		player:  player,
		editing: -1,
	}
}

// UpdateSettings starts over: score, exercise and answer are cleared.
func (s *Session) UpdateSettings(settings Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen = NewGenerator(settings, s.gen.rand)
	s.score = model.Score{}
	s.exercise = nil
	s.resetAnswerLocked()
	s.state = Idle
}

func (s *Session) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen.Settings()
}

// Next generates a new exercise and clears the answer.
func (s *Session) Next() (model.Exercise, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ex, err := s.gen.Generate()
	if err != nil {
		return model.Exercise{}, err
	}
	s.exercise = &ex
	s.resetAnswerLocked()
	s.state = Idle
	return ex, nil
}

func (s *Session) Exercise() (model.Exercise, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exercise == nil {
		return model.Exercise{}, false
	}
	return *s.exercise, true
}

func (s *Session) resetAnswerLocked() {
	s.answer = nil
	if s.gen.Settings().StartOnRoot {
		s.answer = []string{"I"}
	}
	s.editing = -1
	s.feedback = nil
}

// PlaybackStarted and PlaybackFinished bracket a playback of the
// current exercise. Answers are accepted once it has been heard.
// PlaybackStarted returns a token; only the matching PlaybackFinished
// unlocks answers, so a playback that was replaced by a newer one
// cannot unlock them while the newer one is still sounding.
func (s *Session) PlaybackStarted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playback++
	if s.exercise != nil {
		s.state = Playing
	}
	return s.playback
}

func (s *Session) PlaybackFinished(token int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token == s.playback && s.state == Playing {
		s.state = Guessing
	}
}

func (s *Session) acceptingLocked() error {
	if s.exercise == nil {
		return ErrNoExercise
	}
	if s.state != Guessing && s.state != Idle {
		return ErrNotGuessing
	}
	return nil
}

// Select fills the slot being edited, or the next empty one. When the
// answer becomes complete it is checked right away and the feedback is
// returned.
func (s *Session) Select(symbol string) ([]model.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.acceptingLocked(); err != nil {
		return nil, err
	}

	if s.gen.Settings().PlayOnClick && s.player != nil {
		chord := theory.ResolveChord(symbol, s.exercise.Key, s.exercise.UseSevenths)
		s.player.PlaySingleChord(chord, constants.ClickChordDuration)
	}

	target := len(s.exercise.Progression)
	switch {
	case s.editing >= 0:
		s.answer[s.editing] = symbol
		s.editing = -1
	case len(s.answer) < target:
		s.answer = append(s.answer, symbol)
	default:
		return nil, nil
	}

	if len(s.answer) == target {
		return s.checkLocked(), nil
	}
	return nil, nil
}

// Edit marks an answered slot to be replaced by the next Select.
func (s *Session) Edit(slot int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.acceptingLocked(); err != nil {
		return err
	}
	if slot == 0 && s.gen.Settings().StartOnRoot {
		return ErrSlotLocked
	}
	if slot < 0 || slot >= len(s.answer) {
		return ErrNoSuchSlot
	}
	s.editing = slot
	return nil
}

func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.acceptingLocked(); err != nil {
		return err
	}
	s.resetAnswerLocked()
	return nil
}

func (s *Session) checkLocked() []model.Feedback {
	feedback := Check(s.exercise.Progression, s.answer)
	s.feedback = feedback
	s.state = Revealed
	s.editing = -1

	s.score.Total++
	if AllCorrect(feedback) {
		s.score.Correct++
		s.score.Streak++
	} else {
		s.score.Streak = 0
	}
	return append([]model.Feedback(nil), feedback...)
}

func (s *Session) Score() model.Score {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		State:    s.state.String(),
		Answer:   append([]string{}, s.answer...),
		Editing:  s.editing,
		Feedback: append([]model.Feedback(nil), s.feedback...),
		Score:    s.score,
	}
	if s.exercise != nil {
		snap.ExerciseID = s.exercise.ID
		snap.Length = len(s.exercise.Progression)
	}
	return snap
}

// Check compares an answer slot by slot against the answer key.
// Symbols must match exactly.
func Check(key model.Progression, answer []string) []model.Feedback {
	res := make([]model.Feedback, len(key))
	for i := range key {
		switch {
		case i >= len(answer):
			res[i] = model.Unanswered
		case answer[i] == key[i]:
			res[i] = model.Correct
		default:
			res[i] = model.Incorrect
		}
	}
	return res
}

func AllCorrect(feedback []model.Feedback) bool {
	for _, f := range feedback {
		if f != model.Correct {
			return false
		}
	}
	return true
}
