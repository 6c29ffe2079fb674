package hal

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"

	"github.com/autopeer-io/voxpeer/internal/voiceagent/core"
	"github.com/autopeer-io/voxpeer/pkg/log"
)

const (
	mockWidth  = 640
	mockHeight = 480
)

// MockCamera produces synthetic gradient frames, for hosts without a
// camera. Deny makes it refuse access.
type MockCamera struct {
	Deny bool
}

var _ core.Camera = (*MockCamera)(nil)

func (c *MockCamera) Open(_ context.Context) (core.Stream, error) {
	if c.Deny {
		log.Info("[HAL-Mock] Camera access denied")
		return nil, ErrPermissionDenied
	}
	log.Info("[HAL-Mock] Camera stream attached", "width", mockWidth, "height", mockHeight)
	return &mockStream{}, nil
}

type mockStream struct {
	mu      sync.Mutex
	frames  int
	stopped bool
}

func (s *mockStream) Frame(_ context.Context) (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil, errors.New("stream stopped")
	}
	s.frames++

	shift := uint8(s.frames * 16)
	img := image.NewRGBA(image.Rect(0, 0, mockWidth, mockHeight))
	for y := 0; y < mockHeight; y++ {
		for x := 0; x < mockWidth; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(x*255/mockWidth) + shift,
				G: uint8(y * 255 / mockHeight),
				B: 128,
				A: 255,
			})
		}
	}
	return img, nil
}

func (s *mockStream) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		s.stopped = true
		log.Info("[HAL-Mock] Camera tracks stopped")
	}
}

// NoCamera always reports that no camera is present.
type NoCamera struct{}

func (NoCamera) Open(_ context.Context) (core.Stream, error) {
	return nil, ErrCameraUnavailable
}
