// Package coretest provides recording fakes of the voice agent HAL ports.
package coretest

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"

	"github.com/autopeer-io/voxpeer/internal/voiceagent/core"
)

// HAL bundles the fakes below. Zero-value fields are created by NewHAL.
type HAL struct {
	Cam  *Camera
	Spk  *Speaker
	Nav  *Navigator
	Sink *Sink
}

var _ core.HAL = (*HAL)(nil)

func NewHAL() *HAL {
	return &HAL{
		Cam:  &Camera{},
		Spk:  &Speaker{},
		Nav:  &Navigator{},
		Sink: &Sink{},
	}
}

func (h *HAL) Camera() core.Camera          { return h.Cam }
func (h *HAL) Speaker() core.Speaker        { return h.Spk }
func (h *HAL) Navigator() core.Navigator    { return h.Nav }
func (h *HAL) Snapshots() core.SnapshotSink { return h.Sink }

// Speaker records utterances.
type Speaker struct {
	mu     sync.Mutex
	spoken []string
}

func (s *Speaker) Speak(_ context.Context, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spoken = append(s.spoken, text)
}

func (s *Speaker) Spoken() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.spoken...)
}

// Navigator records opened URLs and fails with Err when set.
type Navigator struct {
	Err error

	mu     sync.Mutex
	opened []string
}

func (n *Navigator) Open(_ context.Context, url string) error {
	if n.Err != nil {
		return n.Err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.opened = append(n.opened, url)
	return nil
}

func (n *Navigator) Opened() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.opened...)
}

// Camera hands out Streams of a solid 4x4 frame. OpenErr denies access,
// FrameErr breaks capture.
type Camera struct {
	OpenErr  error
	FrameErr error

	mu      sync.Mutex
	streams []*Stream
}

func (c *Camera) Open(_ context.Context) (core.Stream, error) {
	if c.OpenErr != nil {
		return nil, c.OpenErr
	}
	s := &Stream{frameErr: c.FrameErr}
	c.mu.Lock()
	c.streams = append(c.streams, s)
	c.mu.Unlock()
	return s, nil
}

// Streams returns every stream handed out so far.
func (c *Camera) Streams() []*Stream {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Stream(nil), c.streams...)
}

type Stream struct {
	frameErr error

	mu      sync.Mutex
	stopped bool
}

func (s *Stream) Frame(_ context.Context) (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil, errors.New("stream stopped")
	}
	if s.frameErr != nil {
		return nil, s.frameErr
	}
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	return img, nil
}

func (s *Stream) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}

func (s *Stream) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// Sink keeps saved snapshots in memory and fails with Err when set.
type Sink struct {
	Err error

	mu    sync.Mutex
	saved map[string][]byte
	types map[string]string
}

func (s *Sink) Save(_ context.Context, name string, data []byte, contentType string) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved == nil {
		s.saved = make(map[string][]byte)
		s.types = make(map[string]string)
	}
	s.saved[name] = data
	s.types[name] = contentType
	return "mem://" + name, nil
}

// Saved returns the names of stored snapshots.
func (s *Sink) Saved() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.saved))
	for n := range s.saved {
		names = append(names, n)
	}
	return names
}

// Data returns a stored snapshot and its content type.
func (s *Sink) Data(name string) ([]byte, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved[name], s.types[name]
}
