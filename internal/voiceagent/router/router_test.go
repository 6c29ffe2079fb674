package router

import (
	"context"
	"errors"
	"testing"
	"time"

	clocktesting "k8s.io/utils/clock/testing"

	"github.com/autopeer-io/voxpeer/internal/voiceagent/model"
	"github.com/autopeer-io/voxpeer/internal/voiceagent/state"
)

func newTestRouter() (*Router, *state.Store) {
	store := state.NewStore(clocktesting.NewFakeClock(time.UnixMilli(1700000000000)))
	return New(store), store
}

func TestRouteDispatchesByIntent(t *testing.T) {
	r, store := newTestRouter()

	var got []model.Intent
	for _, intent := range []model.Intent{model.IntentMediaSearch, model.IntentCameraCapture, model.IntentGeneric} {
		intent := intent
		if err := r.Register(intent, func(_ context.Context, task model.Task) error {
			if task.Status != model.TaskPending {
				t.Errorf("handler got %s task, want pending", task.Status)
			}
			got = append(got, intent)
			return nil
		}); err != nil {
			t.Fatal(err)
		}
	}

	r.Route(context.Background(), "play camera song")
	r.Route(context.Background(), "take a selfie")
	r.Route(context.Background(), "good morning")

	want := []model.Intent{model.IntentMediaSearch, model.IntentCameraCapture, model.IntentGeneric}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("dispatch %d = %s, want %s", i, got[i], want[i])
		}
	}

	tasks := store.Tasks()
	if len(tasks) != 3 || tasks[0].Command != "good morning" {
		t.Errorf("tasks = %+v", tasks)
	}
}

func TestRegisterRejectsDuplicate(t *testing.T) {
	r, _ := newTestRouter()
	noop := func(context.Context, model.Task) error { return nil }

	if err := r.Register(model.IntentGeneric, noop); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(model.IntentGeneric, noop); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}

func TestRouteWithoutHandlerFailsTask(t *testing.T) {
	r, store := newTestRouter()

	task := r.Route(context.Background(), "hello")

	got, _ := store.Task(task.ID)
	if got.Status != model.TaskFailed {
		t.Errorf("status = %s, want failed", got.Status)
	}
}

func TestRouteHandlerErrorFailsTask(t *testing.T) {
	r, store := newTestRouter()
	_ = r.Register(model.IntentGeneric, func(_ context.Context, task model.Task) error {
		_ = store.UpdateTask(task.ID, model.TaskProcessing, "Processing command...")
		return errors.New("speaker exploded")
	})

	task := r.Route(context.Background(), "hello")

	got, _ := store.Task(task.ID)
	if got.Status != model.TaskFailed || got.Result != "speaker exploded" {
		t.Errorf("task = %s/%q", got.Status, got.Result)
	}
}

func TestRouteHandlerErrorKeepsFinishedTask(t *testing.T) {
	r, store := newTestRouter()
	_ = r.Register(model.IntentGeneric, func(_ context.Context, task model.Task) error {
		_ = store.UpdateTask(task.ID, model.TaskProcessing, "")
		_ = store.UpdateTask(task.ID, model.TaskCompleted, "done")
		return errors.New("late error")
	})

	task := r.Route(context.Background(), "hello")

	got, _ := store.Task(task.ID)
	if got.Status != model.TaskCompleted {
		t.Errorf("status = %s, want completed", got.Status)
	}
}

func TestRouteHandlerErrorKeepsProgressMessage(t *testing.T) {
	r, store := newTestRouter()
	_ = r.Register(model.IntentGeneric, func(_ context.Context, task model.Task) error {
		_ = store.UpdateTask(task.ID, model.TaskProcessing, "Processing command...")
		return errors.New("speaker exploded")
	})

	var updates []model.Task
	store.Subscribe(func(c state.Change) {
		if c.Kind == state.ChangeTaskUpdated {
			updates = append(updates, c.Task)
		}
	})

	r.Route(context.Background(), "hello")

	if len(updates) != 2 {
		t.Fatalf("got %d task updates, want 2: %+v", len(updates), updates)
	}
	if updates[0].Result != "Processing command..." || updates[1].Status != model.TaskFailed {
		t.Errorf("updates = %+v", updates)
	}
}

func TestRouteWithoutHandlerStepsThroughProcessing(t *testing.T) {
	r, store := newTestRouter()

	var previous []model.TaskStatus
	store.Subscribe(func(c state.Change) {
		if c.Kind == state.ChangeTaskUpdated {
			previous = append(previous, c.Previous)
		}
	})

	r.Route(context.Background(), "hello")

	if len(previous) != 2 || previous[0] != model.TaskPending || previous[1] != model.TaskProcessing {
		t.Errorf("transitions from = %v, want [pending processing]", previous)
	}
}
