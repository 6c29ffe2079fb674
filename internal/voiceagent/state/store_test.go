package state

import (
	"errors"
	"sync"
	"testing"
	"time"

	clocktesting "k8s.io/utils/clock/testing"

	"github.com/autopeer-io/voxpeer/internal/voiceagent/model"
)

var epoch = time.UnixMilli(1700000000000)

func newTestStore() (*Store, *clocktesting.FakeClock) {
	clk := clocktesting.NewFakeClock(epoch)
	return NewStore(clk), clk
}

func TestCreateTaskMostRecentFirst(t *testing.T) {
	s, clk := newTestStore()

	first := s.CreateTask("play shape of you", model.IntentMediaSearch)
	clk.Step(5 * time.Millisecond)
	second := s.CreateTask("hello", model.IntentGeneric)

	if first.ID != "1700000000000" {
		t.Errorf("first ID = %s, want unix millis", first.ID)
	}
	if first.Status != model.TaskPending {
		t.Errorf("new task status = %s, want pending", first.Status)
	}

	tasks := s.Tasks()
	if len(tasks) != 2 || tasks[0].ID != second.ID || tasks[1].ID != first.ID {
		t.Fatalf("tasks not most recent first: %+v", tasks)
	}
}

func TestCreateTaskIDsUniqueWithinMillisecond(t *testing.T) {
	s, _ := newTestStore()

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		task := s.CreateTask("hello", model.IntentGeneric)
		if seen[task.ID] {
			t.Fatalf("duplicate task ID %s", task.ID)
		}
		seen[task.ID] = true
	}
}

func TestUpdateTaskLifecycle(t *testing.T) {
	s, clk := newTestStore()
	task := s.CreateTask("take a photo", model.IntentCameraCapture)

	steps := []struct {
		status model.TaskStatus
		result string
	}{
		{model.TaskProcessing, "Accessing camera..."},
		{model.TaskProcessing, "Camera ready - capturing in 3 seconds..."},
		{model.TaskCompleted, "Photo captured and downloaded"},
	}
	for _, step := range steps {
		clk.Step(time.Second)
		if err := s.UpdateTask(task.ID, step.status, step.result); err != nil {
			t.Fatalf("UpdateTask(%s): %v", step.status, err)
		}
		got, _ := s.Task(task.ID)
		if got.Status != step.status || got.Result != step.result {
			t.Errorf("task = %s/%q, want %s/%q", got.Status, got.Result, step.status, step.result)
		}
	}

	got, _ := s.Task(task.ID)
	if !got.UpdatedAt.Equal(epoch.Add(3 * time.Second)) {
		t.Errorf("UpdatedAt = %v", got.UpdatedAt)
	}
}

func TestUpdateTaskNeverRegresses(t *testing.T) {
	tests := []struct {
		name  string
		setup []model.TaskStatus
		next  model.TaskStatus
	}{
		{"pending to completed", nil, model.TaskCompleted},
		{"pending to failed", nil, model.TaskFailed},
		{"processing to pending", []model.TaskStatus{model.TaskProcessing}, model.TaskPending},
		{"completed to processing", []model.TaskStatus{model.TaskProcessing, model.TaskCompleted}, model.TaskProcessing},
		{"completed to failed", []model.TaskStatus{model.TaskProcessing, model.TaskCompleted}, model.TaskFailed},
		{"failed to completed", []model.TaskStatus{model.TaskProcessing, model.TaskFailed}, model.TaskCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestStore()
			task := s.CreateTask("x", model.IntentGeneric)
			for _, st := range tt.setup {
				if err := s.UpdateTask(task.ID, st, ""); err != nil {
					t.Fatalf("setup %s: %v", st, err)
				}
			}
			before, _ := s.Task(task.ID)

			err := s.UpdateTask(task.ID, tt.next, "ignored")
			if !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("err = %v, want ErrInvalidTransition", err)
			}
			after, _ := s.Task(task.ID)
			if after != before {
				t.Errorf("rejected transition mutated task: %+v -> %+v", before, after)
			}
		})
	}
}

func TestNotFound(t *testing.T) {
	s, _ := newTestStore()

	if err := s.UpdateTask("nope", model.TaskProcessing, ""); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("UpdateTask err = %v", err)
	}
	if _, err := s.Task("nope"); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Task err = %v", err)
	}
	if err := s.SetWorkerStatus("w9", model.WorkerBusy); !errors.Is(err, ErrWorkerNotFound) {
		t.Errorf("SetWorkerStatus err = %v", err)
	}
}

func TestWorkersAndIndicators(t *testing.T) {
	s, _ := newTestStore()

	if err := s.SetWorkerStatus(model.WorkerCamera, model.WorkerBusy); err != nil {
		t.Fatal(err)
	}
	s.SetInterim("play sha")
	s.SetListening(true)
	s.SetTranscript("play shape of you")
	s.SetCameraActive(true)

	snap := s.Snapshot()
	if !snap.Listening || snap.Interim != "" || snap.Transcript != "play shape of you" || !snap.CameraActive {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
	if snap.Workers[1].Status != model.WorkerBusy || snap.Workers[0].Status != model.WorkerIdle {
		t.Errorf("unexpected workers: %+v", snap.Workers)
	}

	snap.Workers[1].Capabilities[0] = "mutated"
	if s.Workers()[1].Capabilities[0] != "camera" {
		t.Error("snapshot shares worker capability slices with the store")
	}
}

func TestSubscribeReceivesChanges(t *testing.T) {
	s, _ := newTestStore()

	var mu sync.Mutex
	var kinds []ChangeKind
	var previous model.TaskStatus
	s.Subscribe(func(c Change) {
		mu.Lock()
		defer mu.Unlock()
		kinds = append(kinds, c.Kind)
		if c.Kind == ChangeTaskUpdated {
			previous = c.Previous
			// Observers may read the store.
			_ = s.Tasks()
		}
	})

	task := s.CreateTask("hello", model.IntentGeneric)
	_ = s.UpdateTask(task.ID, model.TaskProcessing, "Processing command...")
	_ = s.SetWorkerStatus(model.WorkerAssistant, model.WorkerBusy)

	mu.Lock()
	defer mu.Unlock()
	want := []ChangeKind{ChangeTaskCreated, ChangeTaskUpdated, ChangeWorker}
	if len(kinds) != len(want) {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("kinds[%d] = %s, want %s", i, kinds[i], want[i])
		}
	}
	if previous != model.TaskPending {
		t.Errorf("Previous = %s, want pending", previous)
	}
}
