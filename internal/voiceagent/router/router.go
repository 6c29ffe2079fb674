package router

import (
	"context"
	"fmt"
	"sync"

	"github.com/autopeer-io/voxpeer/internal/pkg/metrics"
	"github.com/autopeer-io/voxpeer/internal/voiceagent/core"
	"github.com/autopeer-io/voxpeer/internal/voiceagent/model"
	"github.com/autopeer-io/voxpeer/pkg/log"
)

// TaskStore creates tasks and tracks their progress.
type TaskStore interface {
	core.Tracker
	CreateTask(command string, intent model.Intent) model.Task
	Task(id string) (model.Task, error)
}

// Router turns a final transcript into a task and hands it to the handler
// registered for its intent.
type Router struct {
	store TaskStore

	mu       sync.RWMutex
	handlers map[model.Intent]core.HandlerFunc
}

func New(store TaskStore) *Router {
	return &Router{
		store:    store,
		handlers: make(map[model.Intent]core.HandlerFunc),
	}
}

// Register binds handler to intent. Each intent takes one handler.
func (r *Router) Register(intent model.Intent, handler core.HandlerFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.handlers[intent]; ok {
		return fmt.Errorf("intent %s already has a handler", intent)
	}
	r.handlers[intent] = handler
	return nil
}

// Route creates a pending task for command, classifies it and runs the
// handler. Handler errors are terminal for the task and never returned.
func (r *Router) Route(ctx context.Context, command string) model.Task {
	intent := Classify(command)
	task := r.store.CreateTask(command, intent)
	metrics.CommandsRoutedTotal.WithLabelValues(string(intent)).Inc()

	logger := log.WithValues("taskID", task.ID, "intent", intent)
	logger.Info("Routing command", "command", command)

	r.mu.RLock()
	handler, ok := r.handlers[intent]
	r.mu.RUnlock()

	if !ok {
		r.fail(logger, task.ID, fmt.Sprintf("No handler for %s commands", intent))
		return task
	}

	if err := handler(ctx, task); err != nil {
		logger.Error(err, "Handler failed")
		r.fail(logger, task.ID, err.Error())
	}
	return task
}

// fail drives a task to failed from wherever the handler left it. A task
// the handler already finished is left alone.
func (r *Router) fail(logger log.Logger, id, reason string) {
	task, err := r.store.Task(id)
	if err != nil {
		logger.Error(err, "Failed to look up task")
		return
	}

	switch {
	case task.Status.IsTerminal():
		logger.Debug("Task already finished", "status", task.Status)
		return
	case task.Status == model.TaskPending:
		if err := r.store.UpdateTask(id, model.TaskProcessing, task.Result); err != nil {
			logger.Error(err, "Failed to start task")
			return
		}
	}

	if err := r.store.UpdateTask(id, model.TaskFailed, reason); err != nil {
		logger.Error(err, "Failed to fail task")
	}
}
