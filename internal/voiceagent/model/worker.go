package model

// WorkerStatus is display-only; it never gates execution.
type WorkerStatus string

const (
	WorkerIdle WorkerStatus = "idle"
	WorkerBusy WorkerStatus = "busy"
)

const (
	WorkerMedia     = "w1"
	WorkerCamera    = "w2"
	WorkerAssistant = "w3"
)

// Worker is a display record for one intent handler.
type Worker struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Status       WorkerStatus `json:"status"`
	Capabilities []string     `json:"capabilities"`
}

// DefaultWorkers returns the three workers every session starts with, idle.
func DefaultWorkers() []Worker {
	return []Worker{
		{ID: WorkerMedia, Name: "Media Player", Status: WorkerIdle, Capabilities: []string{"play", "music", "song", "video", "youtube"}},
		{ID: WorkerCamera, Name: "Camera Controller", Status: WorkerIdle, Capabilities: []string{"camera", "photo", "picture", "selfie", "capture"}},
		{ID: WorkerAssistant, Name: "System Assistant", Status: WorkerIdle, Capabilities: []string{"open", "close", "search", "help"}},
	}
}

// WorkerFor returns the ID of the worker that displays intent's handler.
func WorkerFor(intent Intent) string {
	switch intent {
	case IntentMediaSearch:
		return WorkerMedia
	case IntentCameraCapture:
		return WorkerCamera
	default:
		return WorkerAssistant
	}
}
