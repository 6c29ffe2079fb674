package speech

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/autopeer-io/voxpeer/internal/pkg/metrics"
	"github.com/autopeer-io/voxpeer/pkg/log"
)

// Transcripts receives what the listener hears.
type Transcripts interface {
	SetListening(on bool)
	SetInterim(text string)
	SetTranscript(text string)
}

// Listener consumes recognizer events and, while listening, forwards final
// transcripts as commands. Stopping only halts ingestion; commands already
// forwarded keep running.
type Listener struct {
	recognizer Recognizer
	state      Transcripts
	commands   chan<- string

	listening atomic.Bool
}

func NewListener(recognizer Recognizer, state Transcripts, commands chan<- string) *Listener {
	return &Listener{
		recognizer: recognizer,
		state:      state,
		commands:   commands,
	}
}

// Start begins ingesting transcripts and clears any stale interim text.
func (l *Listener) Start() {
	if l.listening.CompareAndSwap(false, true) {
		log.Info("Listening started")
	}
	l.state.SetListening(true)
}

// Stop halts ingestion.
func (l *Listener) Stop() {
	if l.listening.CompareAndSwap(true, false) {
		log.Info("Listening stopped")
	}
	l.state.SetListening(false)
}

// Toggle flips listening and returns the new value.
func (l *Listener) Toggle() bool {
	if l.Listening() {
		l.Stop()
		return false
	}
	l.Start()
	return true
}

// SetListening starts or stops listening.
func (l *Listener) SetListening(on bool) {
	if on {
		l.Start()
	} else {
		l.Stop()
	}
}

func (l *Listener) Listening() bool {
	return l.listening.Load()
}

// Run drives the recognizer until ctx is done.
func (l *Listener) Run(ctx context.Context) error {
	events := make(chan Event)
	done := make(chan error, 1)
	go func() {
		done <- l.recognizer.Run(ctx, events)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-done:
			if err != nil {
				log.Error(err, "Recognizer stopped")
			} else {
				log.Info("Recognizer input closed")
			}
			return err
		case ev := <-events:
			l.handle(ctx, ev)
		}
	}
}

func (l *Listener) handle(ctx context.Context, ev Event) {
	if ev.Kind == Error {
		metrics.RecognizerErrorsTotal.Inc()
		log.Error(ev.Err, "Speech recognition error")
		return
	}

	if !l.Listening() {
		log.Debug("Not listening, dropping transcript", "kind", ev.Kind, "text", ev.Text)
		return
	}

	switch ev.Kind {
	case Interim:
		l.state.SetInterim(ev.Text)
	case Final:
		text := strings.TrimSpace(ev.Text)
		if text == "" {
			return
		}
		l.state.SetTranscript(text)
		select {
		case l.commands <- text:
		case <-ctx.Done():
		}
	}
}
