package core

import (
	"sync"

	"github.com/autopeer-io/voxpeer/internal/voiceagent/model"
	"github.com/autopeer-io/voxpeer/pkg/log"
)

// Activity turns a display flag on with the first Begin and off with the
// matching last End, so overlapping work shows as one busy period.
type Activity struct {
	mu     sync.Mutex
	active int
	set    func(on bool)
}

func NewActivity(set func(on bool)) *Activity {
	return &Activity{set: set}
}

func (a *Activity) Begin() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.active++
	if a.active == 1 {
		a.set(true)
	}
}

// End is a no-op without a matching Begin.
func (a *Activity) End() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.active == 0 {
		return
	}
	a.active--
	if a.active == 0 {
		a.set(false)
	}
}

// NewWorkerActivity shows the worker of intent busy while any of its tasks
// is in flight.
func NewWorkerActivity(tracker Tracker, intent model.Intent) *Activity {
	id := model.WorkerFor(intent)
	return NewActivity(func(on bool) {
		status := model.WorkerIdle
		if on {
			status = model.WorkerBusy
		}
		if err := tracker.SetWorkerStatus(id, status); err != nil {
			log.Error(err, "Failed to update worker", "worker", id, "status", status)
		}
	})
}
