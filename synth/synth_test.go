package synth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/jsphweid/harmondrill/model"
	"github.com/stretchr/testify/assert"
)

type noteEvent struct {
	on    bool
	pitch model.Pitch
	at    time.Time
}

type recordingOutput struct {
	mu     sync.Mutex
	clock  clock.Clock
	events []noteEvent
}

func (o *recordingOutput) Resume(context.Context) error { return nil }

func (o *recordingOutput) NoteOn(p model.Pitch, velocity float64) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, noteEvent{true, p, o.clock.Now()})
	return nil
}

func (o *recordingOutput) NoteOff(p model.Pitch) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, noteEvent{false, p, o.clock.Now()})
	return nil
}

func (o *recordingOutput) Close() error { return nil }

func (o *recordingOutput) offs() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for _, e := range o.events {
		if !e.on {
			n++
		}
	}
	return n
}

func TestEnvelopeLevels(t *testing.T) {
	env := DefaultEnvelope
	assert := assert.New(t)
	assert.Equal(0.0, env.Level(0, -1))
	assert.InDelta(0.5, env.Level(10*time.Millisecond, -1), 1e-9)
	assert.InDelta(1.0, env.Level(20*time.Millisecond, -1), 1e-9)
	assert.InDelta(0.65, env.Level(70*time.Millisecond, -1), 1e-9)
	assert.InDelta(0.3, env.Level(time.Second, -1), 1e-9)

	// released at 1s from sustain, halfway through the release
	assert.InDelta(0.15, env.Level(1500*time.Millisecond, time.Second), 1e-9)
	assert.Equal(0.0, env.Level(2*time.Second, time.Second))
}

func TestTriggerAttackReleaseSendsNoteOffAfterDuration(t *testing.T) {
	mock := clock.NewMock()
	out := &recordingOutput{clock: mock}
	s := New(out, WithClock(mock))

	s.TriggerAttackRelease(model.Chord{60, 64, 67}, time.Second)
	assert.Equal(t, 3, s.Sounding())

	mock.Add(time.Second)
	assert.Eventually(t, func() bool { return out.offs() == 3 }, time.Second, time.Millisecond)
	assert.Equal(t, 0, s.Sounding())
}

func TestOverlappingPitchIsReleasedByLastVoice(t *testing.T) {
	mock := clock.NewMock()
	out := &recordingOutput{clock: mock}
	s := New(out, WithClock(mock))

	s.TriggerAttackRelease(model.Chord{60}, 500*time.Millisecond)
	s.TriggerAttackRelease(model.Chord{60, 64}, time.Second)

	mock.Add(500 * time.Millisecond)
	assert.Eventually(t, func() bool { return s.Sounding() == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, 0, out.offs())

	mock.Add(500 * time.Millisecond)
	assert.Eventually(t, func() bool { return out.offs() == 2 }, time.Second, time.Millisecond)
}

func TestDecibelsToGain(t *testing.T) {
	assert.InDelta(t, 0.316, DecibelsToGain(-10), 0.001)
	assert.InDelta(t, 1.0, DecibelsToGain(0), 1e-9)
}
