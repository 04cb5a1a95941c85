package synth

import (
	"context"

	"github.com/jsphweid/harmondrill/model"
)

// Discard is an Output that drops every note. Used when running headless.
type Discard struct{}

func (Discard) Resume(context.Context) error { return nil }

func (Discard) NoteOn(model.Pitch, float64) error { return nil }

func (Discard) NoteOff(model.Pitch) error { return nil }

func (Discard) Close() error { return nil }
