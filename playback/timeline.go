package playback

import (
	"time"

	"github.com/jsphweid/harmondrill/constants"
)

type Options struct {
	ChordDuration time.Duration
	ChordGap      time.Duration
	UseSevenths   bool
}

func DefaultOptions() Options {
	return Options{
		ChordDuration: constants.DefaultChordDuration,
		ChordGap:      constants.DefaultChordGap,
	}
}

// Timeline is every event of a progression computed up front.
type Timeline struct {
	// Starts[i] is when chord i is attacked.
	Starts []time.Duration
	// Completion is when the last chord's release has died out.
	Completion time.Duration
}

// BuildTimeline places chord i at i*(duration+gap) and completion at
// (n-1)*(duration+gap) + duration + release. An empty progression
// completes immediately.
func BuildTimeline(n int, duration, gap, release time.Duration) Timeline {
	if n <= 0 {
		return Timeline{}
	}
	step := duration + gap
	starts := make([]time.Duration, n)
	for i := range starts {
		starts[i] = time.Duration(i) * step
	}
	return Timeline{
		Starts:     starts,
		Completion: starts[n-1] + duration + release,
	}
}
