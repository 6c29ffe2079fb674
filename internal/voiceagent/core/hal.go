package core

import (
	"context"
	"image"
)

// HAL (Hardware Abstraction Layer) groups the OS and device capabilities
// the agent drives. It is the outbound port of the agent.
type HAL interface {
	Camera() Camera
	Speaker() Speaker
	Navigator() Navigator
	Snapshots() SnapshotSink
}

// Camera grants video access.
type Camera interface {
	// Open requests access and attaches a live stream. Denial or missing
	// hardware is reported as an error.
	Open(ctx context.Context) (Stream, error)
}

// Stream is a live video source.
type Stream interface {
	// Frame grabs the current frame.
	Frame(ctx context.Context) (image.Image, error)

	// Stop releases all tracks. It is safe to call more than once.
	Stop()
}

// Speaker is fire-and-forget speech output.
type Speaker interface {
	Speak(ctx context.Context, text string)
}

// Navigator opens a URL in a new browsing context.
type Navigator interface {
	Open(ctx context.Context, url string) error
}

// SnapshotSink stores a captured photo and returns where it went.
type SnapshotSink interface {
	Save(ctx context.Context, name string, data []byte, contentType string) (string, error)
}
