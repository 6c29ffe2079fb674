package voiceagent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/autopeer-io/voxpeer/internal/pkg/metrics"
	"github.com/autopeer-io/voxpeer/internal/voiceagent/core"
	"github.com/autopeer-io/voxpeer/internal/voiceagent/hub"
	"github.com/autopeer-io/voxpeer/internal/voiceagent/model"
	"github.com/autopeer-io/voxpeer/internal/voiceagent/router"
	"github.com/autopeer-io/voxpeer/internal/voiceagent/server"
	"github.com/autopeer-io/voxpeer/internal/voiceagent/speech"
	"github.com/autopeer-io/voxpeer/internal/voiceagent/state"
	"github.com/autopeer-io/voxpeer/internal/voiceagent/view"
	"github.com/autopeer-io/voxpeer/pkg/log"
)

var (
	ErrEmptyCommand = errors.New("command text is empty")
	ErrShuttingDown = errors.New("agent is shutting down")
)

const commandQueueSize = 16

// Agent ties the recognizer, the router and the intent modules together.
// Commands from the recognizer and from the API share one queue and are
// routed one at a time.
type Agent struct {
	agentID string

	hal      core.HAL
	store    *state.Store
	router   *router.Router
	listener *speech.Listener
	modules  []core.Module

	hub           *hub.Hub
	publishStatus bool
	console       *view.Console
	servers       []server.Server
	listenOnStart bool

	commands chan string
	done     chan struct{}
	stopOnce sync.Once
}

// Option customizes an Agent.
type Option func(*Agent)

// WithHub connects the agent to MQTT. With publishStatus, every task change
// is reported on the task status topic.
func WithHub(h *hub.Hub, publishStatus bool) Option {
	return func(a *Agent) {
		a.hub = h
		a.publishStatus = publishStatus
	}
}

func WithConsole(c *view.Console) Option {
	return func(a *Agent) { a.console = c }
}

func WithServers(servers ...server.Server) Option {
	return func(a *Agent) { a.servers = append(a.servers, servers...) }
}

// WithListenOnStart starts ingesting transcripts as soon as the agent runs.
func WithListenOnStart(on bool) Option {
	return func(a *Agent) { a.listenOnStart = on }
}

func NewAgent(agentID string, store *state.Store, hal core.HAL, recognizer speech.Recognizer, modules []core.Module, opts ...Option) *Agent {
	a := &Agent{
		agentID:  agentID,
		hal:      hal,
		store:    store,
		router:   router.New(store),
		modules:  modules,
		commands: make(chan string, commandQueueSize),
		done:     make(chan struct{}),
	}
	a.listener = speech.NewListener(recognizer, store, a.commands)

	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Store exposes the application state.
func (a *Agent) Store() *state.Store {
	return a.store
}

func (a *Agent) Run(ctx context.Context) error {
	log.Info("Starting vpeer-agent", "agentID", a.agentID)

	for _, m := range a.modules {
		if err := m.Setup(ctx, a.hal, a.store); err != nil {
			return fmt.Errorf("module %s setup failed: %w", m.Name(), err)
		}

		for intent, handler := range m.Routes() {
			if err := a.router.Register(intent, handler); err != nil {
				return fmt.Errorf("module %s register intent %s failed: %w", m.Name(), intent, err)
			}
		}
	}

	a.store.Subscribe(a.observe(ctx))

	if a.hub != nil {
		if err := a.hub.Start(ctx); err != nil {
			return err
		}
		defer a.hub.Stop()
	}

	if a.listenOnStart {
		a.listener.Start()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.listener.Run(gctx) })
	g.Go(func() error { return a.dispatch(gctx) })
	g.Go(func() error { return server.NewManager(a.servers...).Start(gctx) })
	if a.console != nil {
		g.Go(func() error { return a.console.Start(gctx) })
	}

	err := g.Wait()
	a.stopOnce.Do(func() { close(a.done) })

	log.Info("Agent shutting down...")
	for _, m := range a.modules {
		if w, ok := m.(interface{ Wait() }); ok {
			w.Wait()
		}
	}
	return err
}

// dispatch routes queued commands until ctx is done. Delayed completions
// started by a handler inherit ctx and are cancelled with it.
func (a *Agent) dispatch(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case cmd := <-a.commands:
			a.router.Route(ctx, cmd)
		}
	}
}

// Submit queues a typed command behind any spoken ones.
func (a *Agent) Submit(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyCommand
	}

	select {
	case <-a.done:
		return ErrShuttingDown
	default:
	}

	select {
	case a.commands <- text:
		a.store.SetTranscript(text)
		return nil
	case <-a.done:
		return ErrShuttingDown
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Agent) SetListening(on bool) {
	a.listener.SetListening(on)
}

// ToggleListening flips listening and returns the new value.
func (a *Agent) ToggleListening() bool {
	return a.listener.Toggle()
}

func (a *Agent) Listening() bool {
	return a.listener.Listening()
}

// observe keeps the gauges and counters in step with the state and
// forwards task changes to the hub.
func (a *Agent) observe(ctx context.Context) func(state.Change) {
	return func(c state.Change) {
		switch c.Kind {
		case state.ChangeTaskCreated:
			a.publishTask(ctx, c.Task)
		case state.ChangeTaskUpdated:
			if c.Task.Status.IsTerminal() {
				intent := string(c.Task.Intent)
				metrics.TasksFinishedTotal.WithLabelValues(intent, string(c.Task.Status)).Inc()
				metrics.TaskDuration.WithLabelValues(intent).Observe(c.Task.UpdatedAt.Sub(c.Task.CreatedAt).Seconds())
				log.Info("Task finished", "taskID", c.Task.ID, "status", c.Task.Status, "result", c.Task.Result)
			}
			a.publishTask(ctx, c.Task)
		case state.ChangeWorker:
			busy := 0.0
			if c.Worker.Status == model.WorkerBusy {
				busy = 1
			}
			metrics.WorkerBusy.WithLabelValues(c.Worker.ID).Set(busy)
		case state.ChangeListening:
			on := 0.0
			if c.Snapshot.Listening {
				on = 1
			}
			metrics.ListeningStatus.Set(on)
		}
	}
}

func (a *Agent) publishTask(ctx context.Context, task model.Task) {
	if a.hub == nil || !a.publishStatus {
		return
	}
	// Cancelled tasks are still reported while the hub drains.
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	a.hub.PublishTask(pctx, task)
}
