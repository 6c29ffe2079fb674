package media

import (
	"context"

	"github.com/autopeer-io/voxpeer/internal/voiceagent/core"
	"github.com/autopeer-io/voxpeer/internal/voiceagent/model"
)

// Manager answers media-search commands by opening a video search.
type Manager struct {
	hal     core.HAL
	tracker core.Tracker
	busy    *core.Activity
}

var _ core.Module = (*Manager)(nil)

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) Name() string {
	return "Media"
}

func (m *Manager) Setup(ctx context.Context, hal core.HAL, tracker core.Tracker) error {
	m.hal = hal
	m.tracker = tracker
	m.busy = core.NewWorkerActivity(tracker, model.IntentMediaSearch)
	return nil
}

func (m *Manager) Routes() map[model.Intent]core.HandlerFunc {
	return map[model.Intent]core.HandlerFunc{
		model.IntentMediaSearch: m.HandleSearch,
	}
}
