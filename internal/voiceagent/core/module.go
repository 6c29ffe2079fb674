package core

import (
	"context"

	"github.com/autopeer-io/voxpeer/internal/voiceagent/model"
)

// HandlerFunc runs the intent behavior for a freshly created, pending task.
// It returns once the synchronous part is done; delayed completion may
// continue on goroutines bound to ctx.
type HandlerFunc func(ctx context.Context, task model.Task) error

// Module is a pluggable intent handler group.
type Module interface {
	Name() string

	Setup(ctx context.Context, hal HAL, tracker Tracker) error

	Routes() map[model.Intent]HandlerFunc
}

// Tracker is where modules record task progress and worker activity.
type Tracker interface {
	UpdateTask(id string, status model.TaskStatus, result string) error
	SetWorkerStatus(id string, status model.WorkerStatus) error
	SetCameraActive(active bool)
}
