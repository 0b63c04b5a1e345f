package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"NetIntelAPI/internal/logger"
)

const MessageSecurityAlert = "security_alert"

// Message is the frame written to every client.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	log        *logger.Logger
	mu         sync.RWMutex
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan Message, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
		log:        log.With("ws"),
	}
}

// Run serves register, unregister and broadcast requests until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	h.log.Info("WebSocket hub started")
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.log.Info("WebSocket hub shutting down")
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Info("WebSocket client connected. Total: %d", n)
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues a message for every connected client. It returns false
// once the hub has stopped.
func (h *Hub) Broadcast(msgType string, payload interface{}) bool {
	select {
	case h.broadcast <- Message{Type: msgType, Payload: payload}:
		return true
	case <-h.done:
		return false
	}
}

// ForwardAlert relays a raw security_alerts pub/sub payload to clients.
func (h *Hub) ForwardAlert(payload []byte) {
	if !json.Valid(payload) {
		h.log.Warn("Dropping malformed alert payload (%d bytes)", len(payload))
		return
	}
	h.Broadcast(MessageSecurityAlert, json.RawMessage(payload))
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
