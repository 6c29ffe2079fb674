package hal

import (
	"errors"

	"github.com/autopeer-io/voxpeer/internal/voiceagent/core"
)

var (
	// ErrCameraUnavailable means no usable video device exists.
	ErrCameraUnavailable = errors.New("camera not available")

	// ErrPermissionDenied means the device exists but access was refused.
	ErrPermissionDenied = errors.New("camera access denied")
)

// HAL wires one implementation of each port together.
type HAL struct {
	camera    core.Camera
	speaker   core.Speaker
	navigator core.Navigator
	snapshots core.SnapshotSink
}

var _ core.HAL = (*HAL)(nil)

func New(camera core.Camera, speaker core.Speaker, navigator core.Navigator, snapshots core.SnapshotSink) *HAL {
	return &HAL{
		camera:    camera,
		speaker:   speaker,
		navigator: navigator,
		snapshots: snapshots,
	}
}

func (h *HAL) Camera() core.Camera          { return h.camera }
func (h *HAL) Speaker() core.Speaker        { return h.speaker }
func (h *HAL) Navigator() core.Navigator    { return h.navigator }
func (h *HAL) Snapshots() core.SnapshotSink { return h.snapshots }
