package assistant

import (
	"context"
	"sync"
	"time"

	"k8s.io/utils/clock"

	"github.com/autopeer-io/voxpeer/internal/voiceagent/core"
	"github.com/autopeer-io/voxpeer/internal/voiceagent/model"
	"github.com/autopeer-io/voxpeer/pkg/log"
)

// AckDelay is how long a generic command stays processing.
const AckDelay = 1000 * time.Millisecond

// Manager acknowledges commands no other module claims.
type Manager struct {
	clock clock.Clock

	hal     core.HAL
	tracker core.Tracker
	busy    *core.Activity

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
	return "Assistant"
}

func (m *Manager) Setup(ctx context.Context, hal core.HAL, tracker core.Tracker) error {
	m.hal = hal
	m.tracker = tracker
	m.busy = core.NewWorkerActivity(tracker, model.IntentGeneric)
	return nil
}

func (m *Manager) Routes() map[model.Intent]core.HandlerFunc {
	return map[model.Intent]core.HandlerFunc{
		model.IntentGeneric: m.HandleGeneric,
	}
}

// Wait blocks until every pending acknowledgement has finished.
func (m *Manager) Wait() {
	m.inflight.Wait()
}

// HandleGeneric marks the task processing and completes it AckDelay later,
// echoing the command verbatim.
func (m *Manager) HandleGeneric(ctx context.Context, task model.Task) error {
	logger := log.WithValues("taskID", task.ID)

	m.update(logger, task.ID, model.TaskProcessing, "Processing command...")
	m.busy.Begin()

	m.inflight.Add(1)
	go func() {
		defer m.inflight.Done()
		defer m.busy.End()

		timer := m.clock.NewTimer(AckDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			m.update(logger, task.ID, model.TaskFailed, "Cancelled: agent shutting down")
			return
		case <-timer.C():
		}

		m.update(logger, task.ID, model.TaskCompleted, "Understood: "+task.Command)
		m.hal.Speaker().Speak(ctx, "Command processed")
	}()

	return nil
}

func (m *Manager) update(logger log.Logger, id string, status model.TaskStatus, result string) {
	if err := m.tracker.UpdateTask(id, status, result); err != nil {
		logger.Error(err, "Failed to update task", "status", status)
	}
}
