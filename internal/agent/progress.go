// Package agent orchestrates an analysis run: profile the categorized table,
// plan which statistical tools are admissible, execute them concurrently,
// and synthesize ranked insights with a savings plan. Progress is reported
// on an ordered event stream with exactly one terminal event per run.
package agent

import "github.com/Shirly8/sift/internal/model"

// Event is one progress record. Non-terminal events carry a human-readable
// step description; the terminal event has Done set and carries the final
// result payload. Each event is a standalone JSON document.
type Event struct {
	Step string                `json:"step,omitempty"`
	Done bool                  `json:"done,omitempty"`
	Data *model.AnalysisResult `json:"data,omitempty"`
}

// Stream is the one-way, ordered progress channel between a background
// analysis run and its single consumer. The run is the sole producer and
// closes the stream after emitting exactly one terminal event.
type Stream struct {
	ch chan Event
}

// NewStream creates a buffered progress stream. The buffer lets the producer
// run ahead of a slow consumer without dropping ordering.
func NewStream() *Stream {
	return &Stream{ch: make(chan Event, 32)}
}

// Events returns the receive side of the stream. It is closed after the
// terminal event.
func (s *Stream) Events() <-chan Event {
	return s.ch
}

// Step emits a non-terminal progress event.
func (s *Stream) Step(text string) {
	s.ch <- Event{Step: text}
}

// Finish emits the terminal event and closes the stream. Call exactly once.
func (s *Stream) Finish(result *model.AnalysisResult) {
	s.ch <- Event{Done: true, Data: result}
	close(s.ch)
}
