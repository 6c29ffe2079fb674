//go:build linux && cgo

package hal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"os"
	"sync"

	"github.com/vladimirvivien/go4vl/device"
	"github.com/vladimirvivien/go4vl/v4l2"

	"github.com/autopeer-io/voxpeer/internal/voiceagent/core"
	"github.com/autopeer-io/voxpeer/pkg/log"
)

// DeviceCamera streams MJPEG frames from a V4L2 device.
type DeviceCamera struct {
	Device string
	Width  uint32
	Height uint32
}

var _ core.Camera = (*DeviceCamera)(nil)

// Open negotiates an MJPEG format and starts streaming. The stream keeps
// the device until Stop.
func (c *DeviceCamera) Open(ctx context.Context) (core.Stream, error) {
	dev, err := device.Open(c.Device,
		device.WithPixFormat(v4l2.PixFormat{PixelFormat: v4l2.PixelFmtMJPEG, Width: c.Width, Height: c.Height}),
		device.WithBufferSize(1),
	)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("%w: %s", ErrCameraUnavailable, c.Device)
	case errors.Is(err, os.ErrPermission):
		return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, c.Device)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrCameraUnavailable, err)
	}

	streamCtx, cancel := context.WithCancel(ctx)
	if err := dev.Start(streamCtx); err != nil {
		cancel()
		_ = dev.Close()
		return nil, fmt.Errorf("%w: start stream: %v", ErrCameraUnavailable, err)
	}

	log.Info("Camera stream attached", "device", c.Device)
	return &deviceStream{name: c.Device, dev: dev, cancel: cancel}, nil
}

type deviceStream struct {
	name   string
	cancel context.CancelFunc

	mu  sync.Mutex
	dev *device.Device
}

// Frame decodes the next MJPEG frame the device delivers.
func (s *deviceStream) Frame(ctx context.Context) (image.Image, error) {
	s.mu.Lock()
	dev := s.dev
	s.mu.Unlock()
	if dev == nil {
		return nil, errors.New("stream stopped")
	}

	var frame []byte
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case f, ok := <-dev.GetOutput():
		if !ok {
			return nil, errors.New("device stream closed")
		}
		frame = f
	}

	img, _, err := image.Decode(bytes.NewReader(frame))
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	return img, nil
}

func (s *deviceStream) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dev == nil {
		return
	}

	s.cancel()
	if err := s.dev.Stop(); err != nil {
		log.Warn("Failed to stop camera stream", "device", s.name, "error", err)
	}
	if err := s.dev.Close(); err != nil {
		log.Warn("Failed to close camera device", "device", s.name, "error", err)
	}
	s.dev = nil
	log.Info("Camera tracks stopped", "device", s.name)
}
