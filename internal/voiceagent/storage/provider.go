package storage

import (
	"context"

	"github.com/autopeer-io/voxpeer/internal/voiceagent/core"
)

// Provider is a snapshot sink that can verify its backend before use.
type Provider interface {
	core.SnapshotSink

	// CheckReady makes sure the backend can accept writes.
	CheckReady(ctx context.Context) error
}
