package build

import (
	"time"

	"github.com/avrforge/sketchforge/internal/domain/values"
)

// EventKind classifies a progress notification.
type EventKind string

const (
	// EventMessage is a progress or informational line.
	EventMessage EventKind = "message"
	// EventError annotates a fatal problem.
	EventError EventKind = "error"
	// EventSuccess is sent once when a build completes without fatal error.
	EventSuccess EventKind = "success"
	// EventFinished is always the last event of a build.
	EventFinished EventKind = "finished"
)

// Event is one notification published by the orchestrator.
type Event struct {
	Time  time.Time    `json:"time" yaml:"time"`
	Kind  EventKind    `json:"kind" yaml:"kind"`
	Stage values.Stage `json:"stage" yaml:"stage"`
	Text  string       `json:"text" yaml:"text"`
}

// NewEvent creates an event stamped with the current time.
func NewEvent(kind EventKind, stage values.Stage, text string) Event {
	return Event{Time: time.Now(), Kind: kind, Stage: stage, Text: text}
}

// IsTerminal reports whether the event ends the stream.
func (e Event) IsTerminal() bool {
	return e.Kind == EventFinished
}

// Sink receives events. Implementations must not block indefinitely.
type Sink interface {
	OnMessage(text string)
	OnError(text string)
	OnSuccess()
}

// Dispatch forwards e to the matching Sink callback. Finished events are
// delivered as messages.
func Dispatch(s Sink, e Event) {
	switch e.Kind {
	case EventError:
		s.OnError(e.Text)
	case EventSuccess:
		s.OnSuccess()
	default:
		s.OnMessage(e.Text)
	}
}
