//go:build !linux || !cgo

package hal

import (
	"context"
	"fmt"
	"runtime"

	"github.com/autopeer-io/voxpeer/internal/voiceagent/core"
)

// DeviceCamera needs V4L2 and is unavailable on this platform.
type DeviceCamera struct {
	Device string
	Width  uint32
	Height uint32
}

var _ core.Camera = (*DeviceCamera)(nil)

func (c *DeviceCamera) Open(_ context.Context) (core.Stream, error) {
	return nil, fmt.Errorf("%w: device capture is not supported on %s", ErrCameraUnavailable, runtime.GOOS)
}
