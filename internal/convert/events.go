package convert

import (
	"fmt"
	"sync"
)

// EventKind tags an Event.
type EventKind int

const (
	EventProcessing EventKind = iota + 1
	EventFinished
	EventFailed
)

func (k EventKind) String() string {
	switch k {
	case EventProcessing:
		return "processing"
	case EventFinished:
		return "finished"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event is a progress notification. Filename, Index and Total are set for
// EventProcessing; Err is set for EventFailed.
type Event struct {
	Kind     EventKind
	Filename string
	Index    int
	Total    int
	Err      error
}

// Terminal reports whether e ends the stream.
func (e Event) Terminal() bool {
	return e.Kind == EventFinished || e.Kind == EventFailed
}

func (e Event) String() string {
	switch e.Kind {
	case EventProcessing:
		return fmt.Sprintf("processing %s (%d/%d)", e.Filename, e.Index+1, e.Total)
	case EventFailed:
		return fmt.Sprintf("failed: %v", e.Err)
	default:
		return e.Kind.String()
	}
}

// DefaultEventBuffer is the channel capacity used by NewEmitter for sizes below 1.
const DefaultEventBuffer = 64

// Emitter delivers events over a buffered channel whose last slot is kept
// free for the terminal event. Processing events are dropped rather than
// block when the buffer is full. Methods are safe for concurrent use;
// Processing, Finish and Fail are no-ops on a nil Emitter.
type Emitter struct {
	mu     sync.Mutex
	ch     chan Event
	closed bool
}

// NewEmitter returns an emitter with room for size events, at least two.
func NewEmitter(size int) *Emitter {
	if size < 1 {
		size = DefaultEventBuffer
	}
	return &Emitter{ch: make(chan Event, max(size, 2))}
}

// Events returns the receive side. It is closed after the terminal event.
func (e *Emitter) Events() <-chan Event {
	return e.ch
}

// Processing reports that the invocation at index of total is starting. It
// returns false when the event was dropped.
func (e *Emitter) Processing(filename string, index, total int) bool {
	if e == nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || len(e.ch) >= cap(e.ch)-1 {
		return false
	}
	e.ch <- Event{Kind: EventProcessing, Filename: filename, Index: index, Total: total}
	return true
}

// Finish sends EventFinished and closes the stream.
func (e *Emitter) Finish() {
	e.terminate(Event{Kind: EventFinished})
}

// Fail sends EventFailed carrying err and closes the stream.
func (e *Emitter) Fail(err error) {
	e.terminate(Event{Kind: EventFailed, Err: err})
}

// terminate is a no-op after the first call.
func (e *Emitter) terminate(ev Event) {
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	e.ch <- ev
	close(e.ch)
}
