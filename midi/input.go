package midi

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bep/debounce"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/jsphweid/harmondrill/model"
)

// chordTracker follows which keys are held and reports the held chord
// once it has stopped changing for the settle time.
type chordTracker struct {
	mu       sync.Mutex
	held     map[uint8]bool
	debounce func(f func())
	onChord  func(model.Chord)
}

func newChordTracker(settle time.Duration, onChord func(model.Chord)) *chordTracker {
	return &chordTracker{
		held:     make(map[uint8]bool),
		debounce: debounce.New(settle),
		onChord:  onChord,
	}
}

func (t *chordTracker) receive(msg gomidi.Message) {
	var channel, key, velocity uint8
	t.mu.Lock()
	switch {
	case msg.GetNoteStart(&channel, &key, &velocity):
		t.held[key] = true
	case msg.GetNoteEnd(&channel, &key):
		delete(t.held, key)
	default:
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()

	t.debounce(t.report)
}

func (t *chordTracker) report() {
	t.mu.Lock()
	chord := make(model.Chord, 0, len(t.held))
	for key := range t.held {
		chord = append(chord, model.Pitch(key))
	}
	t.mu.Unlock()

	if len(chord) == 0 {
		return
	}
	sort.Slice(chord, func(i, j int) bool { return chord[i] < chord[j] })
	t.onChord(chord)
}

// ListenChords reports every chord held on a MIDI in port once the
// keys have been still for settle. portName picks the first port whose
// name contains it, or port 0 when empty. Call stop to close the port.
func ListenChords(portName string, settle time.Duration, onChord func(model.Chord)) (stop func(), err error) {
	var in drivers.In
	if portName == "" {
		in, err = gomidi.InPort(0)
	} else {
		in, err = gomidi.FindInPort(portName)
	}
	if err != nil {
		return nil, fmt.Errorf("finding midi in port %q: %w", portName, err)
	}

	tracker := newChordTracker(settle, onChord)
	stopListening, err := gomidi.ListenTo(in, func(msg gomidi.Message, timestampms int32) {
		tracker.receive(msg)
	})
	if err != nil {
		return nil, fmt.Errorf("listening on %v: %w", in, err)
	}
	return func() {
		stopListening()
		in.Close()
	}, nil
}

// ListInPorts names the in ports of the registered driver.
func ListInPorts() []string {
	var res []string
	for _, port := range gomidi.GetInPorts() {
		res = append(res, port.String())
	}
	return res
}
