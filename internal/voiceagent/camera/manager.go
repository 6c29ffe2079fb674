package camera

import (
	"context"
	"sync"
	"time"

	"k8s.io/utils/clock"

	"github.com/autopeer-io/voxpeer/internal/voiceagent/core"
	"github.com/autopeer-io/voxpeer/internal/voiceagent/model"
)

// CaptureDelay is the countdown between camera access and the snapshot.
const CaptureDelay = 3000 * time.Millisecond

// Manager answers camera-capture commands with a delayed snapshot.
type Manager struct {
	clock clock.Clock

	hal     core.HAL
	tracker core.Tracker

	busy    *core.Activity
	streams *core.Activity

	// inflight counts scheduled captures.
	inflight sync.WaitGroup
}

var _ core.Module = (*Manager)(nil)

func NewManager(clk clock.Clock) *Manager {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Manager{clock: clk}
}

func (m *Manager) Name() string {
	return "Camera"
}

func (m *Manager) Setup(ctx context.Context, hal core.HAL, tracker core.Tracker) error {
	m.hal = hal
	m.tracker = tracker
	m.busy = core.NewWorkerActivity(tracker, model.IntentCameraCapture)
	m.streams = core.NewActivity(tracker.SetCameraActive)
	return nil
}

func (m *Manager) Routes() map[model.Intent]core.HandlerFunc {
	return map[model.Intent]core.HandlerFunc{
		model.IntentCameraCapture: m.HandleCapture,
	}
}

// Wait blocks until every scheduled capture has finished.
func (m *Manager) Wait() {
	m.inflight.Wait()
}
