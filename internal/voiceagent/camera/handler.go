package camera

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/autopeer-io/voxpeer/internal/voiceagent/core"
	"github.com/autopeer-io/voxpeer/internal/voiceagent/model"
	"github.com/autopeer-io/voxpeer/pkg/log"
)

// HandleCapture opens the camera and schedules a snapshot CaptureDelay
// later. The countdown runs under ctx: it survives a listening stop but not
// agent shutdown.
func (m *Manager) HandleCapture(ctx context.Context, task model.Task) error {
	logger := log.WithValues("taskID", task.ID)

	m.update(logger, task.ID, model.TaskProcessing, "Accessing camera...")
	m.busy.Begin()

	stream, err := m.hal.Camera().Open(ctx)
	if err != nil {
		logger.Warn("Camera unavailable", "error", err)
		m.update(logger, task.ID, model.TaskFailed, "Camera access denied or not available")
		m.hal.Speaker().Speak(ctx, "Unable to access camera")
		m.busy.End()
		return nil
	}
	m.streams.Begin()

	m.update(logger, task.ID, model.TaskProcessing, "Camera ready - capturing in 3 seconds...")
	m.hal.Speaker().Speak(ctx, "Camera ready, capturing photo in 3 seconds")

	m.inflight.Add(1)
	go m.captureAfterDelay(ctx, logger, task.ID, stream)
	return nil
}

func (m *Manager) captureAfterDelay(ctx context.Context, logger log.Logger, id string, stream core.Stream) {
	defer m.inflight.Done()
	defer m.busy.End()

	release := func() {
		stream.Stop()
		m.streams.End()
	}

	timer := m.clock.NewTimer(CaptureDelay)
	select {
	case <-ctx.Done():
		timer.Stop()
		release()
		logger.Info("Capture cancelled")
		m.update(logger, id, model.TaskFailed, "Cancelled: agent shutting down")
		return
	case <-timer.C():
	}

	frame, err := stream.Frame(ctx)
	release()
	if err != nil {
		m.captureFailed(ctx, logger, id, fmt.Errorf("grab frame: %w", err))
		return
	}

	data, err := encodeJPEG(frame)
	if err != nil {
		m.captureFailed(ctx, logger, id, fmt.Errorf("encode jpeg: %w", err))
		return
	}

	name := fmt.Sprintf("photo-%d.jpg", m.clock.Now().UnixMilli())
	location, err := m.hal.Snapshots().Save(ctx, name, data, "image/jpeg")
	if err != nil {
		m.captureFailed(ctx, logger, id, fmt.Errorf("save %s: %w", name, err))
		return
	}

	logger.Info("Photo saved", "location", location, "bytes", len(data))
	m.update(logger, id, model.TaskCompleted, "Photo captured and downloaded")
	m.hal.Speaker().Speak(ctx, "Photo captured successfully")
}

func (m *Manager) captureFailed(ctx context.Context, logger log.Logger, id string, err error) {
	logger.Error(err, "Photo capture failed")
	m.update(logger, id, model.TaskFailed, fmt.Sprintf("Photo capture failed: %v", err))
	m.hal.Speaker().Speak(ctx, "Unable to capture photo")
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 92}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (m *Manager) update(logger log.Logger, id string, status model.TaskStatus, result string) {
	if err := m.tracker.UpdateTask(id, status, result); err != nil {
		logger.Error(err, "Failed to update task", "status", status)
	}
}
