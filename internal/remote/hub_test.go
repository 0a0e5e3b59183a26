package remote

import (
	"context"
	"encoding/json"
	"image"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/pleat/internal/camera"
	"github.com/inamate/pleat/internal/engine"
	"github.com/inamate/pleat/internal/scene"
)

type testClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func dial(t *testing.T, opts engine.Options) (*testClient, *Hub) {
	t.Helper()
	log := slog.New(slog.DiscardHandler)
	opts.Logger = log
	hub := NewHub(opts, nil, log)
	go hub.Run()

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	t.Cleanup(func() {
		hub.Stop()
		srv.Close()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })

	return &testClient{t: t, conn: conn}, hub
}

func (c *testClient) send(typ string, payload any) {
	c.t.Helper()
	msg := Message{Type: typ}
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(c.t, err)
		msg.Payload = data
	}
	data, err := json.Marshal(msg)
	require.NoError(c.t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(c.t, c.conn.Write(ctx, websocket.MessageText, data))
}

func (c *testClient) read() Message {
	c.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, data, err := c.conn.Read(ctx)
	require.NoError(c.t, err)
	var msg Message
	require.NoError(c.t, json.Unmarshal(data, &msg))
	return msg
}

// readUntil skips messages until one of type typ arrives.
func (c *testClient) readUntil(typ string, v any) {
	c.t.Helper()
	for range 16 {
		msg := c.read()
		if msg.Type == typ {
			if v != nil {
				require.NoError(c.t, json.Unmarshal(msg.Payload, v))
			}
			return
		}
	}
	c.t.Fatalf("no %s message received", typ)
}

func TestSessionDeformAndRotate(t *testing.T) {
	c, hub := dial(t, engine.Options{})

	var welcome engine.Snapshot
	c.readUntil(TypeWelcome, &welcome)
	assert.Equal(t, 1, welcome.Slices)
	assert.Equal(t, scene.ModeMesh, welcome.Mode)
	assert.Equal(t, 1, hub.Count())

	c.send(TypeFrameRequest, FrameRequestPayload{Width: 800, Height: 600})
	var frame engine.Frame
	c.readUntil(TypeFrame, &frame)
	require.Len(t, frame.Markers, scene.Sides)
	assert.NotEmpty(t, frame.Commands)

	m := frame.Markers[0]
	c.send(TypePointerDown, PointerPayload{PointerID: 1, X: m.X, Y: m.Y})
	var capture CapturePayload
	c.readUntil(TypeCapture, &capture)
	assert.Equal(t, 0, capture.Handle)
	assert.True(t, capture.Captured)

	c.send(TypePointerMove, PointerPayload{PointerID: 1, X: m.X + 20, Y: m.Y})
	c.send(TypePointerUp, PointerPayload{PointerID: 1})
	c.readUntil(TypeCapture, &capture)
	assert.False(t, capture.Captured)

	c.send(TypePointerDown, PointerPayload{PointerID: 2, X: 5, Y: 5})
	c.send(TypePointerMove, PointerPayload{PointerID: 2, X: 15, Y: 5})
	c.send(TypePointerUp, PointerPayload{PointerID: 2})

	c.send(TypeStateRequest, nil)
	var state engine.Snapshot
	c.readUntil(TypeState, &state)
	assert.InDelta(t, 160, state.Vertices[0].X, 1e-9)
	assert.InDelta(t, 0.1, state.RotationY, 1e-12)
	assert.Equal(t, "idle", state.Interaction)
}

func TestSessionSlices(t *testing.T) {
	c, _ := dial(t, engine.Options{MaxSlices: 5})
	c.readUntil(TypeWelcome, nil)

	var state engine.Snapshot
	c.send(TypeSlicesSet, SlicesPayload{Value: "3"})
	c.readUntil(TypeState, &state)
	assert.Equal(t, 3, state.Slices)

	c.send(TypeSlicesSet, SlicesPayload{Value: "lots"})
	c.readUntil(TypeState, &state)
	assert.Equal(t, 3, state.Slices)

	c.send(TypeSlicesSet, SlicesPayload{Value: "40"})
	c.readUntil(TypeState, &state)
	assert.Equal(t, 5, state.Slices)
}

func TestSessionCameraDenied(t *testing.T) {
	c, _ := dial(t, engine.Options{Source: camera.Unavailable})
	c.readUntil(TypeWelcome, nil)

	c.send(TypeModeToggle, nil)
	var notice NoticePayload
	c.readUntil(TypeNotice, &notice)
	assert.Contains(t, notice.Message, "Camera unavailable")

	c.send(TypeStateRequest, nil)
	var state engine.Snapshot
	c.readUntil(TypeState, &state)
	assert.Equal(t, scene.ModeMesh, state.Mode)
	assert.False(t, state.VideoReady)
}

func TestSessionCameraWithStill(t *testing.T) {
	still := camera.NewStill(image.NewRGBA(image.Rect(0, 0, 8, 8)))
	c, _ := dial(t, engine.Options{Source: still})
	c.readUntil(TypeWelcome, nil)

	c.send(TypeModeToggle, nil)
	var state engine.Snapshot
	c.readUntil(TypeState, &state)
	assert.Equal(t, scene.ModeCamera, state.Mode)

	deadline := time.Now().Add(5 * time.Second)
	for !state.VideoReady && time.Now().Before(deadline) {
		c.send(TypeStateRequest, nil)
		c.readUntil(TypeState, &state)
	}
	require.True(t, state.VideoReady)

	c.send(TypeFrameRequest, FrameRequestPayload{Width: 320, Height: 240})
	var frame engine.Frame
	c.readUntil(TypeFrame, &frame)
	assert.Equal(t, scene.ModeCamera, frame.Mode)
	assert.Equal(t, engine.OpClear, frame.Commands[0].Op)
}

func TestSessionRejectsUnknownType(t *testing.T) {
	c, _ := dial(t, engine.Options{})
	c.readUntil(TypeWelcome, nil)

	c.send("spin", nil)
	var e ErrorPayload
	c.readUntil(TypeError, &e)
	assert.Contains(t, e.Reason, "spin")
}
