package eventhub

import (
	"context"
	"sync"
)

// SharedState is one published shared state snapshot.
type SharedState struct {
	Owner string
	State map[string]any
}

// Recorder is a Hub that keeps every published state and dispatched event in memory.
type Recorder struct {
	mu     sync.RWMutex
	states []SharedState
	events []Event
	closed bool
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// PublishXDMSharedState records state.
func (r *Recorder) PublishXDMSharedState(_ context.Context, owner string, state map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	r.states = append(r.states, SharedState{Owner: owner, State: state})
	return nil
}

// Dispatch records e.
func (r *Recorder) Dispatch(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	r.events = append(r.events, e)
	return nil
}

// SharedStates returns every recorded shared state in publish order.
func (r *Recorder) SharedStates() []SharedState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]SharedState(nil), r.states...)
}

// LatestSharedState returns the last state published by owner.
func (r *Recorder) LatestSharedState(owner string) (map[string]any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := len(r.states) - 1; i >= 0; i-- {
		if r.states[i].Owner == owner {
			return r.states[i].State, true
		}
	}
	return nil, false
}

// Events returns every dispatched event in order.
func (r *Recorder) Events() []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]Event(nil), r.events...)
}

// EventsWith returns the dispatched events with the given type and source.
func (r *Recorder) EventsWith(eventType, source string) []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Event
	for _, e := range r.events {
		if e.Is(eventType, source) {
			out = append(out, e)
		}
	}
	return out
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.states = nil
	r.events = nil
}

// Close marks the recorder closed. Recorded data stays readable.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	return nil
}
