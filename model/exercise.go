package model

type Exercise struct {
	ID          string
	Progression Progression
	Key         Key
	UseSevenths bool
}

type Feedback int

const (
	Unanswered Feedback = iota
	Correct
	Incorrect
)

func (f Feedback) String() string {
	switch f {
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	default:
		return "unanswered"
	}
}

type Score struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
	Streak  int `json:"streak"`
}

func (f Feedback) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}
