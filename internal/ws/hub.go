package ws

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Event types broadcast to connected clients.
const (
	EventNewTrade    = "new_trade"
	EventClosedTrade = "closed_trade"
)

// Event is one message pushed over the live feed.
type Event struct {
	Type    string `json:"type"`
	Content any    `json:"content"`
}

// Hub maintains the set of connected mobile clients and broadcasts trade
// events to them.
type Hub struct {
	logger *zap.Logger

	mu          sync.Mutex
	connections map[*websocket.Conn]bool

	broadcast chan Event
	upgrader  websocket.Upgrader
}

// NewHub creates a new hub for managing live-feed connections.
func NewHub(logger *zap.Logger) *Hub {
	upgrader := websocket.Upgrader{
		// The mobile client connects from an app origin, not the API host.
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	return &Hub{
		logger:      logger,
		connections: make(map[*websocket.Conn]bool),
		broadcast:   make(chan Event, 16),
		upgrader:    upgrader,
	}
}

// Run listens for events to broadcast until the channel is closed.
func (h *Hub) Run() {
	for event := range h.broadcast {
		h.mu.Lock()
		for client := range h.connections {
			if err := client.WriteJSON(event); err != nil {
				h.logger.Warn("Dropping live-feed client", zap.Error(err))
				client.Close()
				delete(h.connections, client)
			}
		}
		h.mu.Unlock()
	}
}

// HandleWebSocket upgrades an HTTP connection and registers it with the hub.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade live-feed connection", zap.Error(err))
		return
	}

	h.mu.Lock()
	h.connections[conn] = true
	h.mu.Unlock()

	// Drain client reads to keep the connection alive and notice closes.
	go func() {
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.mu.Lock()
				delete(h.connections, conn)
				h.mu.Unlock()
				break
			}
		}
	}()
}

// Broadcast queues an event for delivery to all connected clients.
func (h *Hub) Broadcast(event Event) {
	h.broadcast <- event
}
