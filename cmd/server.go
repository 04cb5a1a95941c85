package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/jsphweid/harmondrill/constants"
	"github.com/jsphweid/harmondrill/exercise"
	"github.com/jsphweid/harmondrill/model"
	"github.com/jsphweid/harmondrill/playback"
	"github.com/jsphweid/harmondrill/theory"
)

// Server is the local HTTP bridge a browser UI drives playback and
// exercises through.
type Server struct {
	engine  *playback.Engine
	session *exercise.Session
	log     *slog.Logger

	mu   sync.Mutex
	opts playback.Options

	playMu sync.Mutex
}

func NewServer(engine *playback.Engine, session *exercise.Session, opts playback.Options, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{engine: engine, session: session, opts: opts, log: log}
}

// SetOptions replaces the playback defaults used when a request leaves
// them out.
func (s *Server) SetOptions(opts playback.Options) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts = opts
}

func (s *Server) options() playback.Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts
}

func (s *Server) Router(allowedOrigins []string) http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/ready", s.HandleReady).Methods("POST")
	router.HandleFunc("/resolve", s.HandleResolve).Methods("POST")
	router.HandleFunc("/play", s.HandlePlay).Methods("POST")
	router.HandleFunc("/chord", s.HandleChord).Methods("POST")
	router.HandleFunc("/stop", s.HandleStop).Methods("POST")
	router.HandleFunc("/exercise", s.HandleNewExercise).Methods("POST")
	router.HandleFunc("/exercise", s.HandleGetExercise).Methods("GET")
	router.HandleFunc("/answer", s.HandleAnswer).Methods("POST")
	router.HandleFunc("/settings", s.HandleGetSettings).Methods("GET")
	router.HandleFunc("/settings", s.HandlePutSettings).Methods("PUT")

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(router)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, model.ErrorResponse{Error: err.Error()})
}

// decodeBody treats an empty body as the zero value.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("could not decode request body: %w", err)
	}
	return nil
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func sessionStatus(err error) int {
	switch {
	case errors.Is(err, exercise.ErrNoExercise),
		errors.Is(err, exercise.ErrNotGuessing),
		errors.Is(err, exercise.ErrSlotLocked),
		errors.Is(err, exercise.ErrNoSuchSlot):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func (s *Server) HandleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.EnsureReady(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) HandleResolve(w http.ResponseWriter, r *http.Request) {
	var input model.ResolveRequest
	if err := decodeBody(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	key, err := theory.ParseKey(input.Key)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res := model.ResolveResponse{Key: key.String(), Chords: make([]model.ResolvedChord, 0, len(input.Progression))}
	for i, chord := range theory.ResolveProgression(input.Progression, key, input.UseSevenths) {
		res.Chords = append(res.Chords, model.ResolvedChord{
			Symbol:  input.Progression[i],
			Pitches: chord,
			Names:   chord.Names(),
		})
	}
	writeJSON(w, http.StatusOK, res)
}

// HandlePlay blocks until the playback completes or is cancelled. With
// no progression in the body it plays the current exercise.
func (s *Server) HandlePlay(w http.ResponseWriter, r *http.Request) {
	var input model.PlayRequest
	if err := decodeBody(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	opts := playOptions(s.options(), input)

	var key model.Key
	var progression model.Progression
	fromExercise := len(input.Progression) == 0
	if fromExercise {
		ex, ok := s.session.Exercise()
		if !ok {
			writeError(w, http.StatusConflict, exercise.ErrNoExercise)
			return
		}
		key, progression, opts.UseSevenths = ex.Key, ex.Progression, ex.UseSevenths
	} else {
		var err error
		if key, err = theory.ParseKey(input.Key); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		progression = input.Progression
	}

	// The token is taken before Play cancels the previous playback, so
	// the cancelled request always finishes with a stale token.
	s.playMu.Lock()
	var token int
	if fromExercise {
		token = s.session.PlaybackStarted()
	}
	future, err := s.engine.Play(r.Context(), progression, key, opts)
	s.playMu.Unlock()
	if err != nil {
		if fromExercise {
			s.session.PlaybackFinished(token)
		}
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}

	err = future.Wait(r.Context())
	if fromExercise {
		s.finishWhenSettled(future, token)
	}
	res := model.PlayResponse{Result: future.Result().String()}
	var cancelled *playback.CancelledError
	switch {
	case err == nil:
	case errors.As(err, &cancelled):
		res.Reason = cancelled.Reason
	default:
		s.log.Debug("client stopped waiting for playback", "err", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// playOptions applies the overrides of a play request to the configured
// defaults. A nil field keeps the default; an explicit zero or false
// replaces it.
func playOptions(base playback.Options, input model.PlayRequest) playback.Options {
	opts := base
	if input.ChordDurationMs != nil {
		opts.ChordDuration = millis(*input.ChordDurationMs)
	}
	if input.ChordGapMs != nil {
		opts.ChordGap = millis(*input.ChordGapMs)
	}
	if input.UseSevenths != nil {
		opts.UseSevenths = *input.UseSevenths
	}
	return opts
}

// finishWhenSettled unlocks answers once the playback has settled. A
// client that stopped waiting does not unlock them early.
func (s *Server) finishWhenSettled(future *playback.Future, token int) {
	select {
	case <-future.Done():
		s.session.PlaybackFinished(token)
	default:
		go func() {
			<-future.Done()
			s.session.PlaybackFinished(token)
		}()
	}
}

func (s *Server) HandleChord(w http.ResponseWriter, r *http.Request) {
	var input model.ChordRequest
	if err := decodeBody(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	key, err := theory.ParseKey(input.Key)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	d := constants.ClickChordDuration
	if input.DurationMs > 0 {
		d = millis(input.DurationMs)
	}
	chord := theory.ResolveChord(input.Symbol, key, input.UseSevenths)
	s.engine.PlaySingleChord(chord, d)
	writeJSON(w, http.StatusAccepted, model.ResolvedChord{Symbol: input.Symbol, Pitches: chord, Names: chord.Names()})
}

func (s *Server) HandleStop(w http.ResponseWriter, r *http.Request) {
	s.engine.Stop()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) HandleNewExercise(w http.ResponseWriter, r *http.Request) {
	ex, err := s.session.Next()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusCreated, model.ExerciseResponse{ID: ex.ID, Length: len(ex.Progression)})
}

type exerciseView struct {
	exercise.Snapshot
	Key         string            `json:"key,omitempty"`
	Progression model.Progression `json:"progression,omitempty"`
}

// view reveals the key and answer only once the answer has been checked.
func (s *Server) view() exerciseView {
	res := exerciseView{Snapshot: s.session.Snapshot()}
	if res.State != exercise.Revealed.String() {
		return res
	}
	if ex, ok := s.session.Exercise(); ok {
		res.Key = ex.Key.String()
		res.Progression = ex.Progression
	}
	return res
}

func (s *Server) HandleGetExercise(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.view())
}

func (s *Server) HandleAnswer(w http.ResponseWriter, r *http.Request) {
	var input model.AnswerRequest
	if err := decodeBody(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var err error
	switch {
	case input.Clear:
		err = s.session.Clear()
	case input.Edit != nil:
		err = s.session.Edit(*input.Edit)
	case input.Select != "":
		_, err = s.session.Select(input.Select)
	default:
		err = fmt.Errorf("one of select, edit or clear is required")
	}
	if err != nil {
		writeError(w, sessionStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, s.view())
}

func (s *Server) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Settings())
}

// HandlePutSettings replaces the exercise settings, which resets the
// score.
func (s *Server) HandlePutSettings(w http.ResponseWriter, r *http.Request) {
	settings := s.session.Settings()
	if err := decodeBody(r, &settings); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := settings.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.session.UpdateSettings(settings)
	writeJSON(w, http.StatusOK, settings)
}
