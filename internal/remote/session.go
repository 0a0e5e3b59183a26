package remote

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"

	"github.com/inamate/pleat/internal/engine"
	"github.com/inamate/pleat/internal/geom"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 64 * 1024
)

// Session is one websocket client driving its own engine.
type Session struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	engine   *engine.Engine
	log      *slog.Logger
	seq      atomic.Int64
	ID       string
	ClientID string
}

func newSession(hub *Hub, conn *websocket.Conn, id, clientID string) *Session {
	s := &Session{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, 256),
		log:      hub.log.With("session", id),
		ID:       id,
		ClientID: clientID,
	}
	opts := hub.opts
	opts.Logger = s.log
	opts.Notify = func(msg string) {
		s.sendPayload(TypeNotice, NoticePayload{Message: msg})
		s.sendPayload(TypeState, s.engine.Snapshot())
	}
	s.engine = engine.NewEngine(opts)
	return s
}

func (s *Session) ReadPump(ctx context.Context) {
	defer func() {
		s.hub.Unregister(s)
		s.conn.Close(websocket.StatusNormalClosure, "")
	}()

	s.conn.SetReadLimit(maxMsgSize)

	for {
		_, data, err := s.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway {
				return
			}
			s.log.Debug("read error", "error", err)
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			s.log.Warn("invalid message", "error", err)
			s.sendPayload(TypeError, ErrorPayload{Reason: "invalid message"})
			continue
		}

		s.handleMessage(ctx, &msg)
	}
}

func (s *Session) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-s.send:
			if !ok {
				return
			}

			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := s.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				s.log.Debug("write error", "error", err)
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := s.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

func (s *Session) handleMessage(ctx context.Context, msg *Message) {
	switch msg.Type {
	case TypePointerDown:
		var p PointerPayload
		if !s.decode(msg, &p) {
			return
		}
		var target int
		var capture bool
		if p.Handle != nil {
			target = *p.Handle
			capture = s.engine.PointerDown(target, p.PointerID, p.X, p.Y)
		} else {
			target, capture = s.engine.PointerDownAt(p.PointerID, p.X, p.Y)
		}
		if capture {
			s.sendPayload(TypeCapture, CapturePayload{Handle: target, PointerID: p.PointerID, Captured: true})
		}

	case TypePointerMove:
		var p PointerPayload
		if !s.decode(msg, &p) {
			return
		}
		if p.Handle != nil {
			s.engine.PointerMove(*p.Handle, p.PointerID, p.X, p.Y)
		} else {
			s.engine.PointerMoveCaptured(p.PointerID, p.X, p.Y)
		}

	case TypePointerUp:
		var p PointerPayload
		if !s.decode(msg, &p) {
			return
		}
		if handle, captured := s.engine.PointerUp(); captured {
			s.sendPayload(TypeCapture, CapturePayload{Handle: handle, PointerID: p.PointerID})
		}

	case TypeSlicesSet:
		var p SlicesPayload
		if !s.decode(msg, &p) {
			return
		}
		s.engine.SetSlices(p.Value)
		s.sendPayload(TypeState, s.engine.Snapshot())

	case TypeModeToggle:
		s.engine.ToggleMode(ctx)
		s.sendPayload(TypeState, s.engine.Snapshot())

	case TypeFrameRequest:
		var p FrameRequestPayload
		if !s.decode(msg, &p) {
			return
		}
		s.sendPayload(TypeFrame, s.engine.Tick(geom.Viewport{Width: p.Width, Height: p.Height}))

	case TypeStateRequest:
		s.sendPayload(TypeState, s.engine.Snapshot())

	default:
		s.log.Warn("unknown message type", "type", msg.Type)
		s.sendPayload(TypeError, ErrorPayload{Reason: "unknown message type " + msg.Type})
	}
}

func (s *Session) decode(msg *Message, v any) bool {
	if len(msg.Payload) == 0 {
		return true
	}
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		s.log.Warn("invalid payload", "type", msg.Type, "error", err)
		s.sendPayload(TypeError, ErrorPayload{Reason: "invalid " + msg.Type + " payload"})
		return false
	}
	return true
}

func (s *Session) sendPayload(typ string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.log.Error("marshal payload", "type", typ, "error", err)
		return
	}
	s.Send(&Message{Type: typ, SessionID: s.ID, Seq: s.seq.Add(1), Payload: data})
}

func (s *Session) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.log.Error("marshal message", "error", err)
		return
	}

	select {
	case s.send <- data:
	default:
		s.log.Warn("session send buffer full, dropping message")
	}
}
