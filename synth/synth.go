// Package synth owns the process-wide polyphonic synthesizer. It turns
// "play these pitches for this long" into NoteOn/NoteOff calls on an
// Output and knows the amplitude envelope every note is shaped by.
package synth

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/jsphweid/harmondrill/constants"
	"github.com/jsphweid/harmondrill/model"
)

type Envelope struct {
	Attack  time.Duration
	Decay   time.Duration
	Sustain float64
	Release time.Duration
}

var DefaultEnvelope = Envelope{
	Attack:  constants.EnvelopeAttack,
	Decay:   constants.EnvelopeDecay,
	Sustain: constants.EnvelopeSustain,
	Release: constants.EnvelopeRelease,
}

// Level is the envelope amplitude at time since the attack started, for
// a note released at held. Pass held < 0 for a note still down.
func (e Envelope) Level(since, held time.Duration) float64 {
	if held >= 0 && since >= held {
		from := e.Level(held, -1)
		if e.Release <= 0 {
			return 0
		}
		rel := float64(since-held) / float64(e.Release)
		if rel >= 1 {
			return 0
		}
		return from * (1 - rel)
	}
	switch {
	case since < 0:
		return 0
	case since < e.Attack:
		return float64(since) / float64(e.Attack)
	case since < e.Attack+e.Decay:
		d := float64(since-e.Attack) / float64(e.Decay)
		return 1 - d*(1-e.Sustain)
	default:
		return e.Sustain
	}
}

// Output is an audio sink the synth plays into: a MIDI port, a WAV
// capture, or nothing at all.
type Output interface {
	// Resume makes the sink ready to sound. It must be idempotent.
	Resume(ctx context.Context) error
	NoteOn(p model.Pitch, velocity float64) error
	NoteOff(p model.Pitch) error
	Close() error
}

type PolySynth struct {
	out      Output
	clock    clock.Clock
	env      Envelope
	velocity float64
	log      *slog.Logger

	mu sync.Mutex
	// voices per pitch; NoteOff is only sent when the last one releases
	sounding map[model.Pitch]int
}

type Option func(*PolySynth)

func WithClock(c clock.Clock) Option {
	return func(s *PolySynth) { s.clock = c }
}

func WithEnvelope(env Envelope) Option {
	return func(s *PolySynth) { s.env = env }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *PolySynth) { s.log = l }
}

// WithVolume sets the output level in decibels relative to full scale.
func WithVolume(db float64) Option {
	return func(s *PolySynth) { s.velocity = DecibelsToGain(db) }
}

func New(out Output, opts ...Option) *PolySynth {
	s := &PolySynth{
		out:      out,
		clock:    clock.New(),
		env:      DefaultEnvelope,
		velocity: DecibelsToGain(constants.SynthVolumeDB),
		log:      slog.Default(),
		sounding: make(map[model.Pitch]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *PolySynth) Envelope() Envelope {
	return s.env
}

// TriggerAttackRelease starts every pitch of chord now and releases them
// after d. Nothing cancels a release once a chord has been attacked.
func (s *PolySynth) TriggerAttackRelease(chord model.Chord, d time.Duration) {
	s.mu.Lock()
	for _, p := range chord {
		if err := s.out.NoteOn(p, s.velocity); err != nil {
			s.log.Warn("note on failed", "pitch", p.String(), "error", err)
			continue
		}
		s.sounding[p]++
	}
	s.mu.Unlock()

	pitches := append(model.Chord(nil), chord...)
	s.clock.AfterFunc(d, func() {
		s.release(pitches)
	})
}

func (s *PolySynth) release(chord model.Chord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range chord {
		n, ok := s.sounding[p]
		if !ok {
			continue
		}
		if n > 1 {
			s.sounding[p] = n - 1
			continue
		}
		delete(s.sounding, p)
		if err := s.out.NoteOff(p); err != nil {
			s.log.Warn("note off failed", "pitch", p.String(), "error", err)
		}
	}
}

// Sounding is the number of distinct pitches currently held.
func (s *PolySynth) Sounding() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sounding)
}

func DecibelsToGain(db float64) float64 {
	return math.Pow(10, db/20)
}
