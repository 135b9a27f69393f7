// internal/app/realtime/hub.go

// Package realtime fans committed changes out to websocket clients grouped
// in rooms. Room membership lives only in memory and ends with the
// connection.
package realtime

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// DefaultSendBuffer is the per-connection queue length used when none is
// configured.
const DefaultSendBuffer = 64

var (
	connectionsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "projectflow_realtime_connections",
		Help: "Currently connected websocket clients",
	})

	framesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "projectflow_realtime_frames_enqueued_total",
		Help: "Frames queued for delivery by event",
	}, []string{"event"})

	framesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "projectflow_realtime_frames_dropped_total",
		Help: "Frames dropped because a client's send buffer was full",
	}, []string{"event"})
)

// Frame is the envelope for every message in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Client is one connection's membership handle and outbound queue.
type Client struct {
	ID   string
	send chan []byte
}

// Send is the client's outbound queue. It is closed by Hub.Unregister.
func (c *Client) Send() <-chan []byte { return c.send }

// Hub tracks clients and their rooms. Enqueueing happens under the read
// lock and never blocks; closing a client's queue needs the write lock, so
// the two cannot interleave.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]map[*Client]struct{}
	clients map[*Client]map[string]struct{}

	sendBuffer int
	log        *zap.Logger
}

// NewHub creates an empty hub. sendBuffer <= 0 uses DefaultSendBuffer.
func NewHub(sendBuffer int, logger *zap.Logger) *Hub {
	if sendBuffer <= 0 {
		sendBuffer = DefaultSendBuffer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		rooms:      make(map[string]map[*Client]struct{}),
		clients:    make(map[*Client]map[string]struct{}),
		sendBuffer: sendBuffer,
		log:        logger,
	}
}

// Register adds a connected client with no rooms and queues the welcome
// frame.
func (h *Hub) Register() *Client {
	c := &Client{ID: uuid.NewString(), send: make(chan []byte, h.sendBuffer)}

	h.mu.Lock()
	h.clients[c] = make(map[string]struct{})
	h.mu.Unlock()
	connectionsGauge.Inc()

	h.sendTo(c, EventConnected, map[string]string{"id": c.ID})
	return c
}

// Unregister drops every membership of c and closes its queue. It is safe to
// call more than once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	memberships, ok := h.clients[c]
	if !ok {
		return
	}
	for room := range memberships {
		h.removeLocked(c, room)
	}
	delete(h.clients, c)
	close(c.send)
	connectionsGauge.Dec()
}

// Join adds c to room. Joining twice is a no-op.
func (h *Hub) Join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	memberships, ok := h.clients[c]
	if !ok {
		return
	}
	members := h.rooms[room]
	if members == nil {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
	memberships[room] = struct{}{}
}

// Leave removes c from room.
func (h *Hub) Leave(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if memberships, ok := h.clients[c]; ok {
		delete(memberships, room)
		h.removeLocked(c, room)
	}
}

func (h *Hub) removeLocked(c *Client, room string) {
	if members, ok := h.rooms[room]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// ToRoom queues event for every client in room.
func (h *Hub) ToRoom(room, event string, payload any) {
	h.broadcast(room, nil, event, payload)
}

// ToAll queues event for every connected client.
func (h *Hub) ToAll(event string, payload any) {
	h.broadcast("", nil, event, payload)
}

// Relay queues event for every client in room except from.
func (h *Hub) Relay(from *Client, room, event string, payload any) {
	h.broadcast(room, from, event, payload)
}

func (h *Hub) broadcast(room string, except *Client, event string, payload any) {
	if h == nil {
		return
	}
	msg, err := encode(event, payload)
	if err != nil {
		h.log.Error("realtime: encode frame failed", zap.String("event", event), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if room == "" {
		for c := range h.clients {
			if c != except {
				h.enqueueLocked(c, event, msg)
			}
		}
		return
	}
	for c := range h.rooms[room] {
		if c != except {
			h.enqueueLocked(c, event, msg)
		}
	}
}

// sendTo queues a frame for a single client.
func (h *Hub) sendTo(c *Client, event string, payload any) {
	msg, err := encode(event, payload)
	if err != nil {
		h.log.Error("realtime: encode frame failed", zap.String("event", event), zap.Error(err))
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; ok {
		h.enqueueLocked(c, event, msg)
	}
}

func (h *Hub) enqueueLocked(c *Client, event string, msg []byte) {
	select {
	case c.send <- msg:
		framesSent.WithLabelValues(event).Inc()
	default:
		framesDropped.WithLabelValues(event).Inc()
		h.log.Warn("realtime: send buffer full; frame dropped",
			zap.String("client_id", c.ID), zap.String("event", event))
	}
}

func encode(event string, payload any) ([]byte, error) {
	return json.Marshal(struct {
		Event string `json:"event"`
		Data  any    `json:"data,omitempty"`
	}{event, payload})
}

// RoomSize reports how many clients are in room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// ClientCount reports how many clients are connected.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

/* -------------------------------------------------------------------------- */
/* inbound commands                                                           */
/* -------------------------------------------------------------------------- */

// Handle applies one frame received from c.
func (h *Hub) Handle(c *Client, f Frame) {
	switch f.Event {
	case CmdJoinUserRoom:
		if id, ok := h.idArg(c, f); ok {
			h.Join(c, "user-"+id)
		}
	case CmdJoinProject:
		if id, ok := h.idArg(c, f); ok {
			h.Join(c, "project-"+id)
		}
	case CmdLeaveProject:
		if id, ok := h.idArg(c, f); ok {
			h.Leave(c, "project-"+id)
		}
	case EventTaskUpdated, EventCommentAdded:
		var ref struct {
			ProjectID string `json:"projectId"`
		}
		if err := json.Unmarshal(f.Data, &ref); err != nil || strings.TrimSpace(ref.ProjectID) == "" {
			h.reject(c, f.Event, "data.projectId is required")
			return
		}
		h.Relay(c, "project-"+normID(ref.ProjectID), f.Event, f.Data)
	default:
		h.reject(c, f.Event, "unknown event")
	}
}

// idArg reads a frame whose data is a bare id string.
func (h *Hub) idArg(c *Client, f Frame) (string, bool) {
	var id string
	if err := json.Unmarshal(f.Data, &id); err != nil || strings.TrimSpace(id) == "" {
		h.reject(c, f.Event, "data must be a non-empty id string")
		return "", false
	}
	return normID(id), true
}

func (h *Hub) reject(c *Client, event, msg string) {
	h.log.Debug("realtime: rejected client frame",
		zap.String("client_id", c.ID), zap.String("event", event), zap.String("reason", msg))
	h.sendTo(c, EventError, map[string]string{"event": event, "message": msg})
}

func normID(id string) string { return strings.ToLower(strings.TrimSpace(id)) }
