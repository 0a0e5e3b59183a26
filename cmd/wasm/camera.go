//go:build js && wasm

package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"syscall/js"

	"github.com/inamate/pleat/internal/camera"
)

// userMedia opens the browser camera through navigator.mediaDevices.
type userMedia struct {
	mu       sync.Mutex
	element  js.Value
	live     []*mediaStream // opened and not yet stopped, oldest first
	attached *mediaStream   // stream currently playing in element
}

func newUserMedia() *userMedia {
	return &userMedia{element: js.Null()}
}

func (u *userMedia) Open(ctx context.Context, c camera.Constraints) (camera.Stream, error) {
	devices := js.Global().Get("navigator").Get("mediaDevices")
	if devices.IsUndefined() || devices.Get("getUserMedia").IsUndefined() {
		return nil, fmt.Errorf("%w: getUserMedia not supported", camera.ErrUnavailable)
	}

	constraints := map[string]interface{}{
		"video": map[string]interface{}{"facingMode": c.Video.FacingMode},
	}
	v, err := await(ctx, devices.Call("getUserMedia", js.ValueOf(constraints)), stopTracks)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", camera.ErrUnavailable, err)
	}

	s := &mediaStream{owner: u, media: v}
	u.mu.Lock()
	u.live = append(u.live, s)
	u.mu.Unlock()
	return s, nil
}

func (u *userMedia) setElement(el js.Value) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.element = el
	u.attached = nil
}

// sync attaches the newest live stream to the video element while ready is
// true. Streams that were stopped are never attached.
func (u *userMedia) sync(ready bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if !ready || len(u.live) == 0 || u.element.IsNull() || u.element.IsUndefined() {
		return
	}
	newest := u.live[len(u.live)-1]
	if u.attached == newest {
		return
	}
	u.element.Set("srcObject", newest.media)
	u.element.Call("play")
	u.attached = newest
}

func (u *userMedia) release(s *mediaStream) {
	u.mu.Lock()
	defer u.mu.Unlock()

	for i, l := range u.live {
		if l == s {
			u.live = append(u.live[:i], u.live[i+1:]...)
			break
		}
	}
	if u.attached == s {
		if !u.element.IsNull() && !u.element.IsUndefined() {
			u.element.Set("srcObject", js.Null())
		}
		u.attached = nil
	}
}

type mediaStream struct {
	owner *userMedia
	media js.Value
	once  sync.Once
}

func (s *mediaStream) Stop() {
	s.once.Do(func() {
		stopTracks(s.media)
		s.owner.release(s)
	})
}

func stopTracks(media js.Value) {
	tracks := media.Call("getTracks")
	for i := 0; i < tracks.Length(); i++ {
		tracks.Index(i).Call("stop")
	}
}

// await blocks until p settles or ctx is done. When ctx wins, a value the
// promise resolves with later is handed to discard.
func await(ctx context.Context, p js.Value, discard func(js.Value)) (js.Value, error) {
	type result struct {
		v   js.Value
		err error
	}
	ch := make(chan result, 1)

	then := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		ch <- result{v: args[0]}
		return nil
	})
	catch := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		ch <- result{err: jsError(args[0])}
		return nil
	})
	p.Call("then", then, catch)

	select {
	case r := <-ch:
		then.Release()
		catch.Release()
		return r.v, r.err
	case <-ctx.Done():
		go func() {
			r := <-ch
			then.Release()
			catch.Release()
			if r.err == nil && discard != nil {
				discard(r.v)
			}
		}()
		return js.Undefined(), ctx.Err()
	}
}

func jsError(v js.Value) error {
	if v.Type() == js.TypeObject && !v.Get("message").IsUndefined() {
		name := v.Get("name").String()
		return errors.New(name + ": " + v.Get("message").String())
	}
	return errors.New(v.String())
}
