// Package debugview streams world frames and presentation cues to browser
// debug viewers over websocket. The simulation side never blocks: messages
// go through a buffered channel and are dropped when it is full.
package debugview

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lastdescent/actorsim/internal/feature/present"
	"github.com/lastdescent/actorsim/internal/world"
	"go.uber.org/zap"
)

const (
	writeWait     = 5 * time.Second
	clientBuffer  = 64
	defaultBuffer = 1024
)

// Message is one websocket text frame.
type Message struct {
	Type   string             `json:"type"` // "frame" or "cue"
	Step   uint64             `json:"step,omitempty"`
	Time   float64            `json:"time,omitempty"`
	Actors []world.ActorState `json:"actors,omitempty"`
	Cue    *present.Cue       `json:"cue,omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans messages out to every connected viewer.
type Hub struct {
	log      *zap.Logger
	upgrader websocket.Upgrader
	in       chan Message

	mu      sync.Mutex
	clients map[*client]struct{}

	dropped atomic.Uint64
}

// NewHub creates a hub whose inbound queue holds buffer messages.
func NewHub(log *zap.Logger, buffer int) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // local debug tool
		},
		in:      make(chan Message, buffer),
		clients: make(map[*client]struct{}),
	}
}

// Emit queues a cue. Implements present.Sink.
func (h *Hub) Emit(c present.Cue) {
	h.offer(Message{Type: "cue", Cue: &c})
}

// PublishFrame queues a world snapshot.
func (h *Hub) PublishFrame(step uint64, now float64, actors []world.ActorState) {
	h.offer(Message{Type: "frame", Step: step, Time: now, Actors: actors})
}

func (h *Hub) offer(m Message) {
	select {
	case h.in <- m:
	default:
		h.dropped.Add(1)
	}
}

// Dropped returns how many messages were discarded because a queue was full.
func (h *Hub) Dropped() uint64 { return h.dropped.Load() }

// Clients returns the number of connected viewers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Run encodes queued messages and fans them out until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case m := <-h.in:
			b, err := json.Marshal(m)
			if err != nil {
				h.log.Warn("debugview encode failed", zap.Error(err))
				continue
			}
			h.broadcast(b)
		}
	}
}

func (h *Hub) broadcast(b []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- b:
		default:
			h.dropped.Add(1)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		close(c.send)
		delete(h.clients, c)
	}
}

// ServeHTTP upgrades the request and streams messages until the viewer
// disconnects. Viewers only listen; inbound frames are discarded.
func (h *Hub) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn, send: make(chan []byte, clientBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.log.Info("debug viewer connected", zap.String("remote", r.RemoteAddr))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for b := range c.send {
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		}
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.remove(c)
	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
	}
	conn.Close()
	h.log.Info("debug viewer disconnected", zap.String("remote", r.RemoteAddr))
}
