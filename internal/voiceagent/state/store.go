package state

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"k8s.io/utils/clock"

	"github.com/autopeer-io/voxpeer/internal/voiceagent/core"
	"github.com/autopeer-io/voxpeer/internal/voiceagent/model"
)

var (
	ErrTaskNotFound   = errors.New("task not found")
	ErrWorkerNotFound = errors.New("worker not found")
)

// ChangeKind names what part of the state changed.
type ChangeKind string

const (
	ChangeTaskCreated ChangeKind = "task.created"
	ChangeTaskUpdated ChangeKind = "task.updated"
	ChangeWorker      ChangeKind = "worker"
	ChangeListening   ChangeKind = "listening"
	ChangeTranscript  ChangeKind = "transcript"
	ChangeCamera      ChangeKind = "camera"
)

// Change is delivered to observers after every mutation. Only the fields
// relevant to Kind are set.
type Change struct {
	Kind     ChangeKind
	Task     model.Task
	Previous model.TaskStatus
	Worker   model.Worker
	Snapshot Snapshot
}

// Snapshot is a copy of the whole application state.
type Snapshot struct {
	Listening    bool           `json:"listening"`
	Interim      string         `json:"interim,omitempty"`
	Transcript   string         `json:"transcript,omitempty"`
	CameraActive bool           `json:"cameraActive"`
	Tasks        []model.Task   `json:"tasks"`
	Workers      []model.Worker `json:"workers"`
}

type taskEntry struct {
	task    model.Task
	machine *TaskMachine
}

// Store is the in-memory application state: the task history (most recent
// first, never pruned), the three workers and the listening indicators.
// It is safe for concurrent use; observers run outside the lock.
type Store struct {
	clock clock.PassiveClock

	mu           sync.Mutex
	lastID       int64
	tasks        []*taskEntry
	index        map[string]*taskEntry
	workers      []model.Worker
	listening    bool
	interim      string
	transcript   string
	cameraActive bool

	obsMu     sync.RWMutex
	observers []func(Change)
}

var _ core.Tracker = (*Store)(nil)

// NewStore returns a Store with the default workers, idle and not listening.
func NewStore(clk clock.PassiveClock) *Store {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Store{
		clock:   clk,
		index:   make(map[string]*taskEntry),
		workers: model.DefaultWorkers(),
	}
}

// Subscribe registers fn to be called after every change.
func (s *Store) Subscribe(fn func(Change)) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.observers = append(s.observers, fn)
}

func (s *Store) notify(c Change) {
	s.obsMu.RLock()
	observers := s.observers
	s.obsMu.RUnlock()

	for _, fn := range observers {
		fn(c)
	}
}

// CreateTask records a new pending task at the head of the history.
// IDs are the creation time in unix milliseconds, bumped past the previous
// ID when two commands land in the same millisecond.
func (s *Store) CreateTask(command string, intent model.Intent) model.Task {
	s.mu.Lock()
	now := s.clock.Now()
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id

	e := &taskEntry{
		task: model.Task{
			ID:        strconv.FormatInt(id, 10),
			Command:   command,
			Intent:    intent,
			Status:    model.TaskPending,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	e.machine = newTaskMachine(func(status model.TaskStatus) {
		e.task.Status = status
	})

	s.tasks = append([]*taskEntry{e}, s.tasks...)
	s.index[e.task.ID] = e
	task := e.task
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeTaskCreated, Task: task})
	return task
}

// UpdateTask moves a task to status and replaces its result message.
func (s *Store) UpdateTask(id string, status model.TaskStatus, result string) error {
	s.mu.Lock()
	e, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}

	previous := e.task.Status
	if err := e.machine.Transition(context.Background(), status); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("task %s: %w", id, err)
	}
	e.task.Result = result
	e.task.UpdatedAt = s.clock.Now()
	task := e.task
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeTaskUpdated, Task: task, Previous: previous})
	return nil
}

// Task returns a copy of the task with the given ID.
func (s *Store) Task(id string) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.index[id]
	if !ok {
		return model.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return e.task, nil
}

// Tasks returns the history, most recent first.
func (s *Store) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasksLocked()
}

func (s *Store) tasksLocked() []model.Task {
	out := make([]model.Task, len(s.tasks))
	for i, e := range s.tasks {
		out[i] = e.task
	}
	return out
}

// SetWorkerStatus replaces one worker's display status.
func (s *Store) SetWorkerStatus(id string, status model.WorkerStatus) error {
	s.mu.Lock()
	var worker *model.Worker
	for i := range s.workers {
		if s.workers[i].ID == id {
			worker = &s.workers[i]
			break
		}
	}
	if worker == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrWorkerNotFound, id)
	}
	worker.Status = status
	w := copyWorker(*worker)
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeWorker, Worker: w})
	return nil
}

// Workers returns the three workers in display order.
func (s *Store) Workers() []model.Worker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workersLocked()
}

func (s *Store) workersLocked() []model.Worker {
	out := make([]model.Worker, len(s.workers))
	for i, w := range s.workers {
		out[i] = copyWorker(w)
	}
	return out
}

func copyWorker(w model.Worker) model.Worker {
	w.Capabilities = append([]string(nil), w.Capabilities...)
	return w
}

// SetListening flips the listening indicator. Starting clears the interim
// transcript.
func (s *Store) SetListening(on bool) {
	s.mu.Lock()
	s.listening = on
	if on {
		s.interim = ""
	}
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeListening, Snapshot: s.Snapshot()})
}

// SetInterim records a partial transcript.
func (s *Store) SetInterim(text string) {
	s.mu.Lock()
	s.interim = text
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeTranscript, Snapshot: s.Snapshot()})
}

// SetTranscript records the last final transcript.
func (s *Store) SetTranscript(text string) {
	s.mu.Lock()
	s.transcript = text
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeTranscript, Snapshot: s.Snapshot()})
}

// SetCameraActive records whether a camera stream is attached.
func (s *Store) SetCameraActive(active bool) {
	s.mu.Lock()
	s.cameraActive = active
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeCamera, Snapshot: s.Snapshot()})
}

// Listening reports whether transcripts are being ingested.
func (s *Store) Listening() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listening
}

// Snapshot returns a copy of the whole state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		Listening:    s.listening,
		Interim:      s.interim,
		Transcript:   s.transcript,
		CameraActive: s.cameraActive,
		Tasks:        s.tasksLocked(),
		Workers:      s.workersLocked(),
	}
}
