package view

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gosuri/uitable"

	"github.com/autopeer-io/voxpeer/internal/voiceagent/model"
	"github.com/autopeer-io/voxpeer/internal/voiceagent/state"
)

// Source provides state snapshots and change notifications.
type Source interface {
	Snapshot() state.Snapshot
	Subscribe(fn func(state.Change))
}

// Console redraws the state on a terminal after every change.
type Console struct {
	out      io.Writer
	source   Source
	maxTasks int
	throttle time.Duration
}

func NewConsole(out io.Writer, source Source, maxTasks int, throttle time.Duration) *Console {
	return &Console{
		out:      out,
		source:   source,
		maxTasks: maxTasks,
		throttle: throttle,
	}
}

// Start renders until ctx is done. Bursts of changes within the throttle
// interval produce one redraw.
func (c *Console) Start(ctx context.Context) error {
	dirty := make(chan struct{}, 1)
	c.source.Subscribe(func(state.Change) {
		select {
		case dirty <- struct{}{}:
		default:
		}
	})

	c.draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-dirty:
			if c.throttle > 0 {
				select {
				case <-time.After(c.throttle):
				case <-ctx.Done():
					return nil
				}
			}
			c.draw()
		}
	}
}

func (c *Console) draw() {
	fmt.Fprint(c.out, Render(c.source.Snapshot(), c.maxTasks))
}

// Render formats a snapshot: listening indicator, transcripts, worker
// cards and the most recent maxTasks tasks (all when maxTasks <= 0).
func Render(snap state.Snapshot, maxTasks int) string {
	var b strings.Builder

	b.WriteString("\n")
	if snap.Listening {
		b.WriteString("● Listening")
	} else {
		b.WriteString("○ Not listening")
	}
	if snap.CameraActive {
		b.WriteString("   [camera active]")
	}
	b.WriteString("\n")

	if snap.Listening && snap.Interim != "" {
		fmt.Fprintf(&b, "Hearing: %s\n", snap.Interim)
	}
	if snap.Transcript != "" {
		fmt.Fprintf(&b, "Last command: %s\n", snap.Transcript)
	}

	workers := uitable.New()
	workers.MaxColWidth = 40
	workers.AddRow("WORKER", "NAME", "STATUS", "CAPABILITIES")
	for _, w := range snap.Workers {
		workers.AddRow(w.ID, w.Name, workerLabel(w.Status), strings.Join(firstN(w.Capabilities, 3), ", "))
	}
	b.WriteString("\n")
	b.WriteString(workers.String())
	b.WriteString("\n")

	tasks := snap.Tasks
	if maxTasks > 0 && len(tasks) > maxTasks {
		tasks = tasks[:maxTasks]
	}

	b.WriteString("\n")
	if len(tasks) == 0 {
		b.WriteString("No tasks yet. Say something like \"play shape of you\".\n")
		return b.String()
	}

	table := uitable.New()
	table.MaxColWidth = 50
	table.Wrap = true
	table.AddRow("TASK", "TIME", "STATUS", "COMMAND", "RESULT")
	for _, t := range tasks {
		table.AddRow(t.ID, t.CreatedAt.Format(time.TimeOnly), string(t.Status), t.Command, t.Result)
	}
	b.WriteString(table.String())
	b.WriteString("\n")
	return b.String()
}

func workerLabel(s model.WorkerStatus) string {
	if s == model.WorkerBusy {
		return "Processing..."
	}
	return "Ready"
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
