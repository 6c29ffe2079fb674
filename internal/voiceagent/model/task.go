package model

import "time"

// Intent is the category a command classifies into.
type Intent string

const (
	IntentMediaSearch   Intent = "media-search"
	IntentCameraCapture Intent = "camera-capture"
	IntentGeneric       Intent = "generic"
)

// TaskStatus is the lifecycle position of a Task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskProcessing TaskStatus = "processing"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
)

// IsTerminal reports whether no further transition is allowed.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskCompleted || s == TaskFailed
}

// Task records one issued command and its outcome.
type Task struct {
	ID        string     `json:"id"`
	Command   string     `json:"command"`
	Intent    Intent     `json:"intent"`
	Status    TaskStatus `json:"status"`
	Result    string     `json:"result,omitempty"`
	CreatedAt time.Time  `json:"timestamp"`
	UpdatedAt time.Time  `json:"updatedAt"`
}
