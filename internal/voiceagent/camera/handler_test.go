package camera

import (
	"bytes"
	"context"
	"errors"
	"image/jpeg"
	"strings"
	"testing"
	"time"

	clocktesting "k8s.io/utils/clock/testing"

	"github.com/autopeer-io/voxpeer/internal/voiceagent/core/coretest"
	"github.com/autopeer-io/voxpeer/internal/voiceagent/model"
	"github.com/autopeer-io/voxpeer/internal/voiceagent/state"
)

var epoch = time.UnixMilli(1700000000000)

func setup(t *testing.T) (*Manager, *coretest.HAL, *state.Store, *clocktesting.FakeClock) {
	t.Helper()

	clk := clocktesting.NewFakeClock(epoch)
	hal := coretest.NewHAL()
	store := state.NewStore(clk)
	m := NewManager(clk)
	if err := m.Setup(context.Background(), hal, store); err != nil {
		t.Fatal(err)
	}
	return m, hal, store, clk
}

func waitForTimer(t *testing.T, clk *clocktesting.FakeClock) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !clk.HasWaiters() {
		if time.Now().After(deadline) {
			t.Fatal("capture timer was never scheduled")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestHandleCaptureTakesPhotoAfterDelay(t *testing.T) {
	m, hal, store, clk := setup(t)
	task := store.CreateTask("take a photo", model.IntentCameraCapture)

	if err := m.HandleCapture(context.Background(), task); err != nil {
		t.Fatal(err)
	}

	got, _ := store.Task(task.ID)
	if got.Status != model.TaskProcessing || got.Result != "Camera ready - capturing in 3 seconds..." {
		t.Fatalf("task = %s/%q", got.Status, got.Result)
	}
	if !store.Snapshot().CameraActive {
		t.Error("camera should be active during the countdown")
	}
	if w := store.Workers()[1]; w.Status != model.WorkerBusy {
		t.Errorf("w2 = %s during countdown, want busy", w.Status)
	}

	waitForTimer(t, clk)
	clk.Step(CaptureDelay - time.Millisecond)
	if got, _ := store.Task(task.ID); got.Status != model.TaskProcessing {
		t.Fatalf("captured before the delay elapsed: %s", got.Status)
	}

	clk.Step(time.Millisecond)
	m.Wait()

	got, _ = store.Task(task.ID)
	if got.Status != model.TaskCompleted || got.Result != "Photo captured and downloaded" {
		t.Errorf("task = %s/%q", got.Status, got.Result)
	}

	saved := hal.Sink.Saved()
	wantName := "photo-1700000003000.jpg"
	if len(saved) != 1 || saved[0] != wantName {
		t.Fatalf("saved = %v, want [%s]", saved, wantName)
	}
	data, contentType := hal.Sink.Data(wantName)
	if contentType != "image/jpeg" {
		t.Errorf("content type = %s", contentType)
	}
	if _, err := jpeg.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("saved data is not a JPEG: %v", err)
	}

	if streams := hal.Cam.Streams(); len(streams) != 1 || !streams[0].Stopped() {
		t.Error("stream tracks were not stopped")
	}
	if store.Snapshot().CameraActive {
		t.Error("camera still active after capture")
	}
	if w := store.Workers()[1]; w.Status != model.WorkerIdle {
		t.Errorf("w2 = %s, want idle", w.Status)
	}

	want := []string{"Camera ready, capturing photo in 3 seconds", "Photo captured successfully"}
	spoken := hal.Spk.Spoken()
	if strings.Join(spoken, "|") != strings.Join(want, "|") {
		t.Errorf("spoken = %v, want %v", spoken, want)
	}
}

func TestHandleCaptureAccessDenied(t *testing.T) {
	m, hal, store, _ := setup(t)
	hal.Cam.OpenErr = errors.New("permission denied")
	task := store.CreateTask("selfie lo", model.IntentCameraCapture)

	_ = m.HandleCapture(context.Background(), task)
	m.Wait()

	got, _ := store.Task(task.ID)
	if got.Status != model.TaskFailed || got.Result != "Camera access denied or not available" {
		t.Errorf("task = %s/%q", got.Status, got.Result)
	}
	if w := store.Workers()[1]; w.Status != model.WorkerIdle {
		t.Errorf("w2 = %s, want idle", w.Status)
	}
	if spoken := hal.Spk.Spoken(); len(spoken) != 1 || spoken[0] != "Unable to access camera" {
		t.Errorf("spoken = %v", spoken)
	}
	if store.Snapshot().CameraActive {
		t.Error("camera must not be active after denial")
	}
}

func TestHandleCaptureErrorsFailTask(t *testing.T) {
	tests := []struct {
		name   string
		breakf func(h *coretest.HAL)
	}{
		{"frame error", func(h *coretest.HAL) { h.Cam.FrameErr = errors.New("device busy") }},
		{"save error", func(h *coretest.HAL) { h.Sink.Err = errors.New("disk full") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, hal, store, clk := setup(t)
			tt.breakf(hal)
			task := store.CreateTask("click a picture", model.IntentCameraCapture)

			_ = m.HandleCapture(context.Background(), task)
			waitForTimer(t, clk)
			clk.Step(CaptureDelay)
			m.Wait()

			got, _ := store.Task(task.ID)
			if got.Status != model.TaskFailed || !strings.HasPrefix(got.Result, "Photo capture failed") {
				t.Errorf("task = %s/%q", got.Status, got.Result)
			}
			if streams := hal.Cam.Streams(); !streams[0].Stopped() {
				t.Error("stream tracks were not stopped")
			}
			if w := store.Workers()[1]; w.Status != model.WorkerIdle {
				t.Errorf("w2 = %s, want idle", w.Status)
			}
		})
	}
}

func TestHandleCaptureCancelledOnShutdown(t *testing.T) {
	m, hal, store, clk := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	task := store.CreateTask("take a photo", model.IntentCameraCapture)

	_ = m.HandleCapture(ctx, task)
	waitForTimer(t, clk)
	cancel()
	m.Wait()

	got, _ := store.Task(task.ID)
	if got.Status != model.TaskFailed {
		t.Errorf("status = %s, want failed", got.Status)
	}
	if len(hal.Sink.Saved()) != 0 {
		t.Error("no photo should be saved after shutdown")
	}
	if !hal.Cam.Streams()[0].Stopped() {
		t.Error("stream tracks were not stopped")
	}
	if w := store.Workers()[1]; w.Status != model.WorkerIdle {
		t.Errorf("w2 = %s, want idle", w.Status)
	}
}

func waitForStatus(t *testing.T, store *state.Store, id string, want model.TaskStatus) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		if got, _ := store.Task(id); got.Status == want {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("task %s never reached %s", id, want)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestHandleCaptureOverlappingCountdowns(t *testing.T) {
	m, hal, store, clk := setup(t)

	first := store.CreateTask("take a photo", model.IntentCameraCapture)
	_ = m.HandleCapture(context.Background(), first)
	waitForTimer(t, clk)

	clk.Step(time.Second)
	second := store.CreateTask("click a selfie", model.IntentCameraCapture)
	_ = m.HandleCapture(context.Background(), second)

	clk.Step(CaptureDelay - time.Second)
	waitForStatus(t, store, first.ID, model.TaskCompleted)

	if got, _ := store.Task(second.ID); got.Status != model.TaskProcessing {
		t.Fatalf("second capture = %s, want processing", got.Status)
	}
	streams := hal.Cam.Streams()
	if len(streams) != 2 || !streams[0].Stopped() || streams[1].Stopped() {
		t.Fatal("only the first stream should be stopped")
	}
	if !store.Snapshot().CameraActive {
		t.Error("camera inactive while the second stream is attached")
	}
	if w := store.Workers()[1]; w.Status != model.WorkerBusy {
		t.Errorf("w2 = %s while the second capture runs, want busy", w.Status)
	}

	waitForTimer(t, clk)
	clk.Step(CaptureDelay)
	m.Wait()

	if got, _ := store.Task(second.ID); got.Status != model.TaskCompleted {
		t.Errorf("second capture = %s, want completed", got.Status)
	}
	if store.Snapshot().CameraActive {
		t.Error("camera still active after both captures")
	}
	if w := store.Workers()[1]; w.Status != model.WorkerIdle {
		t.Errorf("w2 = %s, want idle", w.Status)
	}
	if saved := hal.Sink.Saved(); len(saved) != 2 {
		t.Errorf("saved = %v, want two photos", saved)
	}
}
