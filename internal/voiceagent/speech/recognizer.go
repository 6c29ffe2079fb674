package speech

import (
	"context"
)

// EventKind tells interim hypotheses, final transcripts and recognizer
// errors apart.
type EventKind int

const (
	Interim EventKind = iota
	Final
	Error
)

func (k EventKind) String() string {
	switch k {
	case Interim:
		return "interim"
	case Final:
		return "final"
	default:
		return "error"
	}
}

// Event is one recognizer result.
type Event struct {
	Kind EventKind
	Text string
	Err  error
}

// Recognizer turns speech into events. Run blocks until ctx is done or the
// source is exhausted.
type Recognizer interface {
	Run(ctx context.Context, events chan<- Event) error
}
