package server

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/bigbadman-lab/onesol/internal/logger"
)

// WSMessage is the envelope pushed to websocket subscribers.
type WSMessage struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Hub fans WSMessages out to every connected websocket client. Slow or dead
// clients are dropped on the first failed write.
type Hub struct {
	mu        sync.Mutex
	clients   map[*websocket.Conn]bool
	broadcast chan WSMessage
	upgrader  websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan WSMessage, 16),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Run consumes the broadcast channel until it is closed. Call in its own
// goroutine.
func (h *Hub) Run() {
	for msg := range h.broadcast {
		h.mu.Lock()
		for conn := range h.clients {
			if err := conn.WriteJSON(msg); err != nil {
				conn.Close()
				delete(h.clients, conn)
			}
		}
		h.mu.Unlock()
	}
}

// Broadcast queues a message for every connected client. Drops the message
// when the queue is full rather than blocking a request handler.
func (h *Hub) Broadcast(event string, data any) {
	select {
	case h.broadcast <- WSMessage{Event: event, Data: data}:
	default:
		logger.Warn(context.Background(), "Broadcast queue full, dropping message", "event", event)
	}
}

// ServeWS upgrades the request and registers the connection. Inbound frames
// are read and discarded; the read loop exists to detect the close.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn(r.Context(), "Websocket upgrade failed", "error", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	go func() {
		defer func() {
			h.mu.Lock()
			delete(h.clients, conn)
			h.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Close stops the broadcast loop and disconnects every client.
func (h *Hub) Close() {
	close(h.broadcast)
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}
