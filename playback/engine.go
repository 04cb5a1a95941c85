// Package playback schedules resolved progressions onto the transport
// and reports one completion signal per Play. The engine owns the only
// mutable audio state: the lazily built synth and the live session.
package playback

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/jsphweid/harmondrill/model"
	"github.com/jsphweid/harmondrill/synth"
	"github.com/jsphweid/harmondrill/theory"
	"github.com/jsphweid/harmondrill/transport"
)

type session struct {
	future   *Future
	timeline Timeline
}

type Engine struct {
	mu        sync.Mutex
	clock     clock.Clock
	transport *transport.Transport
	out       synth.Output
	synthOpts []synth.Option
	log       *slog.Logger

	// built on first EnsureReady and kept for the life of the engine
	synth   *synth.PolySynth
	session *session
}

type Option func(*Engine)

func WithClock(c clock.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func WithSynthOptions(opts ...synth.Option) Option {
	return func(e *Engine) { e.synthOpts = append(e.synthOpts, opts...) }
}

func NewEngine(out synth.Output, opts ...Option) *Engine {
	e := &Engine{
		out:   out,
		clock: clock.New(),
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.transport = transport.New(e.clock)
	return e
}

// EnsureReady resumes the audio output and builds the synth the first
// time. Safe to call any number of times.
func (e *Engine) EnsureReady(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ensureReadyLocked(ctx)
}

func (e *Engine) ensureReadyLocked(ctx context.Context) error {
	if err := e.out.Resume(ctx); err != nil {
		return fmt.Errorf("resuming audio output: %w", err)
	}
	if e.synth == nil {
		opts := append([]synth.Option{synth.WithClock(e.clock), synth.WithLogger(e.log)}, e.synthOpts...)
		e.synth = synth.New(e.out, opts...)
		env := e.synth.Envelope()
		e.log.Debug("synth ready", "attack", env.Attack, "decay", env.Decay, "sustain", env.Sustain, "release", env.Release)
	}
	return nil
}

// Play resolves progression in key and schedules every chord. Any
// playback already running is cancelled first, so at most one Future is
// ever pending. The returned error is only about readying the output.
func (e *Engine) Play(ctx context.Context, progression model.Progression, key model.Key, opts Options) (*Future, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ensureReadyLocked(ctx); err != nil {
		return nil, err
	}
	e.stopLocked("superseded by a new playback")

	opts = opts.normalized()
	chords := theory.ResolveProgression(progression, key, opts.UseSevenths)
	timeline := BuildTimeline(len(chords), opts.ChordDuration, opts.ChordGap, e.synth.Envelope().Release)

	s := &session{future: newFuture(), timeline: timeline}
	e.session = s

	for i, chord := range chords {
		chord := chord
		e.transport.Schedule(timeline.Starts[i], func(time.Duration) {
			e.attack(s, chord, opts.ChordDuration)
		})
	}
	e.transport.Schedule(timeline.Completion, func(time.Duration) {
		e.complete(s)
	})
	e.transport.Start()

	e.log.Info("playing progression", "key", key.String(), "chords", len(chords), "completion", timeline.Completion)
	return s.future, nil
}

// attack sounds a scheduled chord unless s has been stopped or replaced
// since the transport fired it.
func (e *Engine) attack(s *session, chord model.Chord, d time.Duration) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session != s {
		return false
	}
	e.log.Debug("chord", "at", e.transport.Position(), "pitches", chord.String())
	e.synth.TriggerAttackRelease(chord, d)
	return true
}

func (e *Engine) complete(s *session) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session != s {
		return
	}
	e.session = nil
	e.transport.Stop()
	s.future.resolve()
	e.log.Debug("playback completed")
}

// PlaySingleChord sounds chord right away on the shared synth. It is not
// part of any scheduled playback and may overlap one. Before EnsureReady
// it logs and does nothing.
func (e *Engine) PlaySingleChord(chord model.Chord, d time.Duration) {
	e.mu.Lock()
	sy := e.synth
	e.mu.Unlock()

	if sy == nil {
		e.log.Warn("PlaySingleChord called before the audio output is ready; call EnsureReady first")
		return
	}
	sy.TriggerAttackRelease(chord, d)
}

// Stop cancels every unfired event, rewinds the transport and rejects
// the pending Future if there is one. Already attacked chords still ring
// out their release.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked("stopped")
}

func (e *Engine) stopLocked(reason string) {
	if e.session != nil {
		e.session.future.reject(reason)
		e.session = nil
		e.log.Debug("playback cancelled", "reason", reason)
	}
	e.transport.Cancel()
	e.transport.Stop()
}

// Playing reports whether a Future is pending.
func (e *Engine) Playing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session != nil
}

func (e *Engine) Position() time.Duration {
	return e.transport.Position()
}

// Release is how long a note keeps sounding after it is let go.
func (e *Engine) Release() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.synth == nil {
		return synth.DefaultEnvelope.Release
	}
	return e.synth.Envelope().Release
}

// Close stops playback and closes the output.
func (e *Engine) Close() error {
	e.Stop()
	return e.out.Close()
}

func (o Options) normalized() Options {
	if o.ChordDuration <= 0 {
		o.ChordDuration = DefaultOptions().ChordDuration
	}
	if o.ChordGap < 0 {
		o.ChordGap = 0
	}
	return o
}
