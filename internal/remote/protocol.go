package remote

import "encoding/json"

type Message struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId,omitempty"`
	Seq       int64           `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

const (
	// Client → server
	TypePointerDown  = "pointer.down"
	TypePointerMove  = "pointer.move"
	TypePointerUp    = "pointer.up"
	TypeSlicesSet    = "slices.set"
	TypeModeToggle   = "mode.toggle"
	TypeFrameRequest = "frame.request"
	TypeStateRequest = "state.request"

	// Server → client
	TypeWelcome = "welcome"
	TypeFrame   = "frame"
	TypeCapture = "capture"
	TypeState   = "state"
	TypeNotice  = "notice"
	TypeError   = "error"
)

// PointerPayload carries pointer.down/move/up. Handle is the pressed or
// moved-over handle when the client hit-tests itself; when absent the
// server resolves the target from its last frame.
type PointerPayload struct {
	PointerID int     `json:"pointerId"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Handle    *int    `json:"handle,omitempty"`
}

// SlicesPayload is raw slice-count input, exactly as typed.
type SlicesPayload struct {
	Value string `json:"value"`
}

// FrameRequestPayload is the client's current viewport.
type FrameRequestPayload struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// CapturePayload tells the client to capture or release a pointer on a handle.
type CapturePayload struct {
	Handle    int  `json:"handle"`
	PointerID int  `json:"pointerId"`
	Captured  bool `json:"captured"`
}

type NoticePayload struct {
	Message string `json:"message"`
}

type ErrorPayload struct {
	Reason string `json:"reason"`
}
