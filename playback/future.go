package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrCancelled is matched by every error a superseded or stopped
// playback resolves with.
var ErrCancelled = errors.New("playback cancelled")

// CancelledError says why a playback did not complete.
type CancelledError struct {
	Reason string
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("playback cancelled: %s", e.Reason)
}

func (e *CancelledError) Is(target error) bool {
	return target == ErrCancelled
}

type Result int

const (
	Pending Result = iota
	Completed
	Cancelled
)

func (r Result) String() string {
	switch r {
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	default:
		return "pending"
	}
}

// Future is the single completion signal of one Play call. It settles
// exactly once, as Completed or Cancelled.
type Future struct {
	done chan struct{}
	once sync.Once

	result Result
	err    error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) settle(r Result, err error) bool {
	settled := false
	f.once.Do(func() {
		f.result = r
		f.err = err
		settled = true
		close(f.done)
	})
	return settled
}

func (f *Future) resolve() bool {
	return f.settle(Completed, nil)
}

func (f *Future) reject(reason string) bool {
	return f.settle(Cancelled, &CancelledError{Reason: reason})
}

func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Result is Pending until Done is closed.
func (f *Future) Result() Result {
	select {
	case <-f.done:
		return f.result
	default:
		return Pending
	}
}

// Wait blocks until the playback settles or ctx ends. It returns nil on
// completion and a *CancelledError when superseded or stopped. Giving up
// on ctx does not stop the playback.
func (f *Future) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
