// Package camera models acquisition of a live video feed and tracks which
// acquisition request is still wanted, so streams that arrive after the user
// has left camera mode are stopped instead of attached.
package camera

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnavailable is wrapped by every acquisition failure.
var ErrUnavailable = errors.New("camera unavailable")

// ErrNoStream is reported for a source that succeeded without a stream.
var ErrNoStream = fmt.Errorf("%w: source returned no stream", ErrUnavailable)

// VideoConstraints mirrors the media constraints sent to the platform.
type VideoConstraints struct {
	FacingMode string `json:"facingMode"`
}

// Constraints is the acquisition request.
type Constraints struct {
	Video VideoConstraints `json:"video"`
}

// Environment requests the rear-facing camera.
func Environment() Constraints {
	return Constraints{Video: VideoConstraints{FacingMode: "environment"}}
}

// Stream is an acquired feed. Stop releases every track; it must be safe to
// call more than once.
type Stream interface {
	Stop()
}

// Source acquires streams. Open may block until the platform grants or
// denies access.
type Source interface {
	Open(ctx context.Context, c Constraints) (Stream, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, c Constraints) (Stream, error)

func (f SourceFunc) Open(ctx context.Context, c Constraints) (Stream, error) {
	return f(ctx, c)
}

// Unavailable is a Source that always fails.
var Unavailable Source = SourceFunc(func(ctx context.Context, c Constraints) (Stream, error) {
	return nil, ErrUnavailable
})
