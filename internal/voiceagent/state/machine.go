package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/looplab/fsm"

	fsmutil "github.com/autopeer-io/voxpeer/internal/pkg/util/fsm"
	"github.com/autopeer-io/voxpeer/internal/voiceagent/model"
)

// ErrInvalidTransition is returned when a status change would regress a
// task or leave a terminal status.
var ErrInvalidTransition = errors.New("invalid task transition")

const (
	eventProcess  = "process"
	eventProgress = "progress"
	eventComplete = "complete"
	eventFail     = "fail"
)

// TaskMachine guards the lifecycle of one task:
//
//	pending --process--> processing --complete--> completed
//	                     processing --fail------> failed
//
// "progress" is a processing self-transition used to replace the result
// message while work continues.
type TaskMachine struct {
	fsm *fsm.FSM
}

func newTaskMachine(onEnter func(status model.TaskStatus)) *TaskMachine {
	m := &TaskMachine{}
	m.fsm = fsm.NewFSM(
		string(model.TaskPending),
		fsm.Events{
			{Name: eventProcess, Src: []string{string(model.TaskPending)}, Dst: string(model.TaskProcessing)},
			{Name: eventProgress, Src: []string{string(model.TaskProcessing)}, Dst: string(model.TaskProcessing)},
			{Name: eventComplete, Src: []string{string(model.TaskProcessing)}, Dst: string(model.TaskCompleted)},
			{Name: eventFail, Src: []string{string(model.TaskProcessing)}, Dst: string(model.TaskFailed)},
		},
		fsm.Callbacks{
			"enter_state": fsmutil.WrapEvent(func(_ context.Context, e *fsm.Event) error {
				onEnter(model.TaskStatus(e.Dst))
				return nil
			}),
		},
	)
	return m
}

// Current returns the machine's status.
func (m *TaskMachine) Current() model.TaskStatus {
	return model.TaskStatus(m.fsm.Current())
}

// Transition moves the machine to status. Asking for processing while
// already processing is accepted and leaves the status unchanged.
func (m *TaskMachine) Transition(ctx context.Context, status model.TaskStatus) error {
	var event string
	switch status {
	case model.TaskProcessing:
		event = eventProcess
		if m.Current() == model.TaskProcessing {
			event = eventProgress
		}
	case model.TaskCompleted:
		event = eventComplete
	case model.TaskFailed:
		event = eventFail
	default:
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.Current(), status)
	}

	if err := m.fsm.Event(ctx, event); fsmutil.IsRealError(err) {
		return fmt.Errorf("%w: %s -> %s: %v", ErrInvalidTransition, m.Current(), status, err)
	}
	return nil
}
