package speech

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// interimPrefix marks a console line as a partial hypothesis.
const interimPrefix = "~"

// ConsoleRecognizer reads one transcript per line, for hosts without a
// microphone pipeline. Lines starting with "~" are interim hypotheses.
type ConsoleRecognizer struct {
	in io.Reader
}

var _ Recognizer = (*ConsoleRecognizer)(nil)

func NewConsoleRecognizer(in io.Reader) *ConsoleRecognizer {
	return &ConsoleRecognizer{in: in}
}

func (r *ConsoleRecognizer) Run(ctx context.Context, events chan<- Event) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)

	// Reads from stdin cannot be cancelled, so the scanner lives on its own
	// goroutine and is abandoned on shutdown.
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}

			ev := Event{Kind: Final, Text: line}
			if strings.HasPrefix(line, interimPrefix) {
				ev = Event{Kind: Interim, Text: strings.TrimPrefix(line, interimPrefix)}
			}

			select {
			case events <- ev:
			case <-ctx.Done():
				return nil
			}
		}
	}
}
