package cmd

import (
	"bytes"
	"context"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsphweid/harmondrill/config"
	"github.com/jsphweid/harmondrill/exercise"
	"github.com/jsphweid/harmondrill/model"
	"github.com/jsphweid/harmondrill/playback"
	"github.com/jsphweid/harmondrill/synth"
)

func TestParseProgressionArgs(t *testing.T) {
	key, progression, err := parseProgressionArgs([]string{"Eb3", "I", "vi"})
	require.NoError(t, err)
	assert.Equal(t, model.Key{Root: 3, Octave: 3}, key)
	assert.Equal(t, model.Progression{"I", "vi"}, progression)

	_, _, err = parseProgressionArgs(nil)
	assert.Error(t, err)
	_, _, err = parseProgressionArgs([]string{"X4", "I"})
	assert.Error(t, err)
}

func TestProgressionNotesFollowTimeline(t *testing.T) {
	opts := playback.Options{ChordDuration: time.Second, ChordGap: 500 * time.Millisecond}
	notes := progressionNotes(model.Progression{"I", "V"}, model.Key{Octave: 4}, opts, synth.DefaultEnvelope)

	require.Len(t, notes, 6)
	assert.Equal(t, model.Pitch(60), notes[0].Pitch)
	assert.Equal(t, time.Duration(0), notes[0].Start)
	assert.Equal(t, time.Second, notes[0].End)
	assert.Equal(t, model.Pitch(67), notes[3].Pitch)
	assert.Equal(t, 1500*time.Millisecond, notes[3].Start)
	assert.Equal(t, 2500*time.Millisecond, notes[5].End)
	assert.InDelta(t, synth.DecibelsToGain(-10), notes[0].Velocity, 1e-9)
}

func newTestServer() (*Server, *exercise.Session) {
	engine := playback.NewEngine(synth.Discard{})
	session := exercise.NewSession(exercise.DefaultSettings(), rand.New(rand.NewSource(1)), engine)
	return NewServer(engine, session, playback.DefaultOptions(), nil), session
}

func TestReloadConfigAppliesChanges(t *testing.T) {
	server, session := newTestServer()
	_, err := session.Next()
	require.NoError(t, err)

	v := viper.New()
	config.SetDefaults(v)
	v.Set("chord_duration", "2s")
	v.Set("chord_gap", "100ms")

	reloadConfig(v, server, session)
	assert.Equal(t, 2*time.Second, server.options().ChordDuration)
	assert.Equal(t, 100*time.Millisecond, server.options().ChordGap)
	// unchanged exercise settings keep the running exercise
	_, ok := session.Exercise()
	assert.True(t, ok)

	v.Set("exercise.length", 6)
	reloadConfig(v, server, session)
	assert.Equal(t, 6, session.Settings().Length)
	_, ok = session.Exercise()
	assert.False(t, ok)
}

func TestReloadConfigIgnoresInvalid(t *testing.T) {
	server, session := newTestServer()

	v := viper.New()
	config.SetDefaults(v)
	v.Set("chord_duration", "3s")
	v.Set("output", "speaker")

	reloadConfig(v, server, session)
	assert.Equal(t, time.Second, server.options().ChordDuration)
}

// runClock keeps advancing mock until the test ends, so blocking
// playbacks settle.
func runClock(t *testing.T, mock *clock.Mock) {
	t.Helper()
	done := make(chan struct{})
	t.Cleanup(func() { close(done) })
	go func() {
		for {
			select {
			case <-done:
				return
			default:
				mock.Add(100 * time.Millisecond)
				time.Sleep(time.Millisecond)
			}
		}
	}()
}

func newTestQuiz(t *testing.T, settings exercise.Settings) (*quiz, *bytes.Buffer) {
	t.Helper()
	mock := clock.NewMock()
	runClock(t, mock)
	engine := playback.NewEngine(synth.Discard{}, playback.WithClock(mock))
	out := &bytes.Buffer{}
	return &quiz{
		engine:  engine,
		session: exercise.NewSession(settings, rand.New(rand.NewSource(1)), engine),
		opts:    playback.DefaultOptions(),
		out:     out,
	}, out
}

func dominantDrill() exercise.Settings {
	settings := exercise.DefaultSettings()
	settings.Key = "C"
	settings.FixedOctave = 4
	settings.AllowedChords = []string{"V"}
	return settings
}

func TestQuizAcceptsWholeProgressionWithGivenRoot(t *testing.T) {
	q, out := newTestQuiz(t, dominantDrill())
	_, err := q.session.Next()
	require.NoError(t, err)

	require.NoError(t, q.answer(context.Background(), []string{"I", "V", "V", "V"}))
	assert.Equal(t, model.Score{Correct: 1, Total: 1, Streak: 1}, q.session.Score())
	assert.Contains(t, out.String(), "I:correct V:correct V:correct V:correct")
}

func TestQuizAcceptsOnlyTheRest(t *testing.T) {
	q, _ := newTestQuiz(t, dominantDrill())
	_, err := q.session.Next()
	require.NoError(t, err)

	require.NoError(t, q.answer(context.Background(), []string{"V", "V", "V"}))
	assert.Equal(t, model.Score{Correct: 1, Total: 1, Streak: 1}, q.session.Score())
}

func TestSkipGivenRoot(t *testing.T) {
	given := exercise.Snapshot{Length: 4, Answer: []string{"I"}, Editing: -1}
	tests := []struct {
		name        string
		snap        exercise.Snapshot
		startOnRoot bool
		symbols     []string
		want        []string
	}{
		{"whole progression", given, true, []string{"I", "vi", "IV", "V"}, []string{"vi", "IV", "V"}},
		{"only the rest", given, true, []string{"I", "IV", "V"}, []string{"I", "IV", "V"}},
		{"root not given", given, false, []string{"I", "vi", "IV", "V"}, []string{"I", "vi", "IV", "V"}},
		{"different first", given, true, []string{"ii", "vi", "IV", "V"}, []string{"ii", "vi", "IV", "V"}},
		{
			"already answering",
			exercise.Snapshot{Length: 4, Answer: []string{"I", "vi"}, Editing: -1},
			true,
			[]string{"I", "vi", "IV", "V"},
			[]string{"I", "vi", "IV", "V"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, skipGivenRoot(tt.snap, tt.startOnRoot, tt.symbols))
		})
	}
}

func TestPlayOptionsOverrides(t *testing.T) {
	base := playback.Options{ChordDuration: time.Second, ChordGap: 200 * time.Millisecond, UseSevenths: true}

	assert.Equal(t, base, playOptions(base, model.PlayRequest{}))

	off := false
	zero := 0
	duration := 500
	got := playOptions(base, model.PlayRequest{UseSevenths: &off, ChordGapMs: &zero, ChordDurationMs: &duration})
	assert.Equal(t, playback.Options{ChordDuration: 500 * time.Millisecond}, got)
}

func TestReplacedExerciseReplayKeepsAnswersLocked(t *testing.T) {
	mock := clock.NewMock()
	engine := playback.NewEngine(synth.Discard{}, playback.WithClock(mock))
	session := exercise.NewSession(dominantDrill(), rand.New(rand.NewSource(1)), engine)
	handler := NewServer(engine, session, playback.DefaultOptions(), nil).Router(nil)
	_, err := session.Next()
	require.NoError(t, err)

	play := func() <-chan *httptest.ResponseRecorder {
		res := make(chan *httptest.ResponseRecorder, 1)
		go func() {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/play", nil))
			res <- w
		}()
		return res
	}

	first := play()
	require.Eventually(t, func() bool { return session.State() == exercise.Playing }, time.Second, time.Millisecond)
	second := play()

	w := <-first
	assert.Contains(t, w.Body.String(), "superseded by a new playback")
	require.True(t, engine.Playing())
	assert.Equal(t, exercise.Playing, session.State())
	_, err = session.Select("V")
	assert.ErrorIs(t, err, exercise.ErrNotGuessing)

	runClock(t, mock)
	w = <-second
	assert.Contains(t, w.Body.String(), `"result":"completed"`)
	assert.Equal(t, exercise.Guessing, session.State())
}
