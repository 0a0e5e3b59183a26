// Package remote lets websocket clients drive a server-side engine: clients
// send pointer, slice and mode input and request frames; the server answers
// with draw commands, handle markers, state and notices.
package remote

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/inamate/pleat/internal/engine"
	"github.com/inamate/pleat/internal/typeid"
)

type Hub struct {
	mu         sync.RWMutex
	sessions   map[string]*Session // sessionID -> session
	register   chan *Session
	unregister chan *Session
	done       chan struct{}
	stopOnce   sync.Once

	opts    engine.Options
	origins []string
	log     *slog.Logger
}

// NewHub creates a hub whose sessions each get an engine built from opts.
// origins are the accepted websocket origin patterns.
func NewHub(opts engine.Options, origins []string, log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		sessions:   make(map[string]*Session),
		register:   make(chan *Session),
		unregister: make(chan *Session),
		done:       make(chan struct{}),
		opts:       opts,
		origins:    origins,
		log:        log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case s := <-h.register:
			h.addSession(s)
		case s := <-h.unregister:
			h.removeSession(s)
		case <-h.done:
			return
		}
	}
}

// Stop ends Run and closes every session's engine.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)

		h.mu.Lock()
		sessions := h.sessions
		h.sessions = make(map[string]*Session)
		h.mu.Unlock()

		for _, s := range sessions {
			s.engine.Close()
			s.conn.Close(websocket.StatusGoingAway, "server shutting down")
		}
		h.log.Info("remote sessions closed", "count", len(sessions))
	})
}

func (h *Hub) Register(s *Session) {
	select {
	case h.register <- s:
	case <-h.done:
	}
}

func (h *Hub) Unregister(s *Session) {
	select {
	case h.unregister <- s:
	case <-h.done:
	}
}

// Count returns the number of live sessions.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

func (h *Hub) addSession(s *Session) {
	h.mu.Lock()
	h.sessions[s.ID] = s
	h.mu.Unlock()

	s.sendPayload(TypeWelcome, s.engine.Snapshot())
	h.log.Info("session joined", "session", s.ID, "client", s.ClientID)
}

func (h *Hub) removeSession(s *Session) {
	h.mu.Lock()
	if _, ok := h.sessions[s.ID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.sessions, s.ID)
	h.mu.Unlock()

	// Pending camera work may still notify; drain it before closing send.
	s.engine.Close()
	close(s.send)

	h.log.Info("session left", "session", s.ID, "client", s.ClientID)
}

// HandleWebSocket upgrades the request and runs a session until the client
// disconnects.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.origins,
	})
	if err != nil {
		h.log.Error("websocket accept", "error", err)
		return
	}

	s := newSession(h, conn, typeid.NewSessionID(), uuid.New().String())
	h.Register(s)

	ctx := r.Context()
	go s.WritePump(ctx)
	s.ReadPump(ctx)
}
