package render

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/jsphweid/harmondrill/model"
)

// WavOutput captures live NoteOn/NoteOff calls against a clock and
// renders them to a WAV file on Close.
type WavOutput struct {
	path  string
	clock clock.Clock
	opts  Options

	mu      sync.Mutex
	started bool
	origin  time.Time
	held    map[model.Pitch][]int
	notes   []Note
}

func NewWavOutput(path string, c clock.Clock, opts Options) *WavOutput {
	if c == nil {
		c = clock.New()
	}
	return &WavOutput{
		path:  path,
		clock: c,
		opts:  opts,
		held:  make(map[model.Pitch][]int),
	}
}

// Resume starts the capture timeline at the first call.
func (o *WavOutput) Resume(context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.started {
		o.started = true
		o.origin = o.clock.Now()
	}
	return nil
}

func (o *WavOutput) NoteOn(p model.Pitch, velocity float64) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.started {
		return fmt.Errorf("wav output not resumed")
	}
	now := o.clock.Since(o.origin)
	o.notes = append(o.notes, Note{Pitch: p, Velocity: velocity, Start: now, End: -1})
	o.held[p] = append(o.held[p], len(o.notes)-1)
	return nil
}

func (o *WavOutput) NoteOff(p model.Pitch) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	now := o.clock.Since(o.origin)
	for _, i := range o.held[p] {
		o.notes[i].End = now
	}
	delete(o.held, p)
	return nil
}

// Notes returns the captured notes; ones still held end now.
func (o *WavOutput) Notes() []Note {
	o.mu.Lock()
	defer o.mu.Unlock()

	now := o.clock.Since(o.origin)
	res := make([]Note, len(o.notes))
	copy(res, o.notes)
	for i := range res {
		if res[i].End < 0 {
			res[i].End = now
		}
	}
	return res
}

func (o *WavOutput) Close() error {
	notes := o.Notes()

	f, err := os.Create(o.path)
	if err != nil {
		return fmt.Errorf("creating %v: %w", o.path, err)
	}
	defer f.Close()

	if err := WriteWav(f, notes, o.opts); err != nil {
		return err
	}
	return f.Close()
}
