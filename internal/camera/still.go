package camera

import (
	"context"
	"fmt"
	"image"
	"sync"
)

// Still is a Source backed by a single image. Hosts without a real camera
// (the websocket server, the software preview) use it as the video frame.
type Still struct {
	mu  sync.RWMutex
	img image.Image
}

// NewStill returns a still source; img may be nil until a frame is loaded.
func NewStill(img image.Image) *Still {
	return &Still{img: img}
}

// Set replaces the frame.
func (s *Still) Set(img image.Image) {
	s.mu.Lock()
	s.img = img
	s.mu.Unlock()
}

// Frame returns the current frame, or nil.
func (s *Still) Frame() image.Image {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.img
}

func (s *Still) Open(ctx context.Context, c Constraints) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if s.Frame() == nil {
		return nil, fmt.Errorf("%w: no still frame loaded", ErrUnavailable)
	}
	return &stillStream{}, nil
}

type stillStream struct {
	stopped bool
}

func (s *stillStream) Stop() { s.stopped = true }
