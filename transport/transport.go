// Package transport is the playback clock: a list of timed callbacks
// that are armed when the transport starts and discarded on cancel.
package transport

import (
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

type State int

const (
	Stopped State = iota
	Started
)

func (s State) String() string {
	if s == Started {
		return "started"
	}
	return "stopped"
}

// Callback receives the transport time it was scheduled for.
type Callback func(at time.Duration)

type entry struct {
	id    int
	at    time.Duration
	fn    Callback
	timer *clock.Timer
	// bumped on every arm/disarm so a late timer goroutine can tell it is stale
	gen int
}

type Transport struct {
	mu        sync.Mutex
	clock     clock.Clock
	state     State
	startedAt time.Time
	nextID    int
	entries   map[int]*entry
}

func New(c clock.Clock) *Transport {
	if c == nil {
		c = clock.New()
	}
	return &Transport{
		clock:   c,
		entries: make(map[int]*entry),
	}
}

// Schedule registers fn at transport time at. If the transport is
// already running the entry is armed right away.
func (t *Transport) Schedule(at time.Duration, fn Callback) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if at < 0 {
		at = 0
	}
	t.nextID++
	e := &entry{id: t.nextID, at: at, fn: fn}
	t.entries[e.id] = e
	if t.state == Started {
		t.armLocked(e)
	}
	return e.id
}

// Start arms every pending entry relative to now. Starting a running
// transport is a no-op.
func (t *Transport) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == Started {
		return
	}
	t.state = Started
	t.startedAt = t.clock.Now()
	for _, e := range t.sortedLocked() {
		t.armLocked(e)
	}
}

// Stop halts the transport and rewinds it to zero. Pending entries stay
// registered and fire again from the origin on the next Start.
func (t *Transport) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, e := range t.entries {
		t.disarmLocked(e)
	}
	t.state = Stopped
	t.startedAt = time.Time{}
}

// Cancel discards every entry that has not fired yet. The running state
// and position are left alone.
func (t *Transport) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for id, e := range t.entries {
		t.disarmLocked(e)
		delete(t.entries, id)
	}
}

func (t *Transport) Clear(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if e, ok := t.entries[id]; ok {
		t.disarmLocked(e)
		delete(t.entries, id)
	}
}

func (t *Transport) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Position is the time since Start, or zero when stopped.
func (t *Transport) Position() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != Started {
		return 0
	}
	return t.clock.Since(t.startedAt)
}

// Pending is the number of entries that have not fired.
func (t *Transport) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

func (t *Transport) sortedLocked() []*entry {
	res := make([]*entry, 0, len(t.entries))
	for _, e := range t.entries {
		res = append(res, e)
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].at != res[j].at {
			return res[i].at < res[j].at
		}
		return res[i].id < res[j].id
	})
	return res
}

func (t *Transport) armLocked(e *entry) {
	t.disarmLocked(e)
	delay := e.at - t.clock.Since(t.startedAt)
	if delay < 0 {
		delay = 0
	}
	gen := e.gen
	e.timer = t.clock.AfterFunc(delay, func() {
		t.fire(e, gen)
	})
}

func (t *Transport) disarmLocked(e *entry) {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.gen++
}

func (t *Transport) fire(e *entry, gen int) {
	t.mu.Lock()
	current, ok := t.entries[e.id]
	if !ok || current != e || e.gen != gen {
		t.mu.Unlock()
		return
	}
	delete(t.entries, e.id)
	e.timer = nil
	t.mu.Unlock()

	e.fn(e.at)
}
