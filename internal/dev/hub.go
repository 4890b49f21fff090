package dev

import (
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/rrbuilder/internal/metrics"
)

// MessageType is the type of a watch message.
type MessageType string

const (
	MessageRoutes MessageType = "routes"
	MessageError  MessageType = "error"
)

// Message is sent to watchers via WebSocket.
type Message struct {
	Type    MessageType `json:"type"`
	Version int         `json:"version"`
	Count   int         `json:"count,omitempty"`
	Digest  string      `json:"digest,omitempty"`
	Error   string      `json:"error,omitempty"`
}

const writeTimeout = 5 * time.Second

// client serializes writes to one connection.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub manages watch WebSocket connections.
type Hub struct {
	clients  map[*client]bool
	mu       sync.RWMutex
	upgrader websocket.Upgrader
	metrics  *metrics.Metrics

	// current returns the message a new client receives first.
	current func() (Message, bool)
}

// NewHub creates a new hub. current may be nil.
func NewHub(m *metrics.Metrics, current func() (Message, bool)) *Hub {
	return &Hub{
		clients: make(map[*client]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins in dev
			},
		},
		metrics: m,
		current: current,
	}
}

// HandleWebSocket handles WebSocket upgrade and connection.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn}

	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	h.metrics.WatchClientConnected()

	if h.current != nil {
		if msg, ok := h.current(); ok {
			if data, err := json.Marshal(msg); err == nil {
				c.send(data)
			}
		}
	}

	// Keep connection alive until client disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.remove(c)
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		h.metrics.WatchClientDisconnected()
	}
	c.conn.Close()
}

// Broadcast sends msg to all connected clients and returns how many
// received it.
func (h *Hub) Broadcast(msg Message) int {
	data, err := json.Marshal(msg)
	if err != nil {
		return 0
	}

	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	sent := 0
	for _, c := range clients {
		if err := c.send(data); err != nil {
			h.remove(c)
			continue
		}
		sent++
	}
	return sent
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close closes all client connections.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*client]bool)
	h.mu.Unlock()

	for c := range clients {
		h.metrics.WatchClientDisconnected()
		c.conn.Close()
	}
}
