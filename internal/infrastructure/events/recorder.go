package events

import (
	"context"
	"sync"
)

// Recorder keeps published events in memory. Handy for tests and local runs.
type Recorder struct {
	mu     sync.Mutex
	Events map[string][]Event
}

func NewRecorder() *Recorder {
	return &Recorder{Events: map[string][]Event{}}
}

func (r *Recorder) Publish(_ context.Context, topic string, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events[topic] = append(r.Events[topic], ev)
	return nil
}

func (r *Recorder) Topic(topic string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.Events[topic]...)
}

func (r *Recorder) Close() error { return nil }
