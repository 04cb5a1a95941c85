package model

type ResolveRequest struct {
	Key         string      `json:"key"`
	Progression Progression `json:"progression"`
	UseSevenths bool        `json:"use_sevenths"`
}

type ResolvedChord struct {
	Symbol  string   `json:"symbol"`
	Pitches []Pitch  `json:"pitches"`
	Names   []string `json:"names"`
}

type ResolveResponse struct {
	Key    string          `json:"key"`
	Chords []ResolvedChord `json:"chords"`
}

// PlayRequest plays Progression in Key. When Progression is empty the
// current exercise is played instead. Timing and sevenths left out use
// the configured defaults; an explicit 0 or false overrides them.
type PlayRequest struct {
	Key             string      `json:"key"`
	Progression     Progression `json:"progression"`
	UseSevenths     *bool       `json:"use_sevenths,omitempty"`
	ChordDurationMs *int        `json:"chord_duration_ms,omitempty"`
	ChordGapMs      *int        `json:"chord_gap_ms,omitempty"`
}

type PlayResponse struct {
	// "completed" or "cancelled"
	Result string `json:"result"`
	Reason string `json:"reason,omitempty"`
}

type ChordRequest struct {
	Key         string `json:"key"`
	Symbol      string `json:"symbol"`
	UseSevenths bool   `json:"use_sevenths"`
	DurationMs  int    `json:"duration_ms"`
}

// AnswerRequest drives the exercise answer: one of Select, Edit or Clear.
type AnswerRequest struct {
	Select string `json:"select,omitempty"`
	Edit   *int   `json:"edit,omitempty"`
	Clear  bool   `json:"clear,omitempty"`
}

type ExerciseResponse struct {
	ID     string `json:"id"`
	Length int    `json:"length"`
	// the key is only revealed once the answer has been checked
	Key         string      `json:"key,omitempty"`
	Progression Progression `json:"progression,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
