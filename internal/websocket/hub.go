package websocket

import (
	"sync"

	"github.com/shekharupadhyay/live-typing-board/internal/service/room"
)

// Hub tracks every live connection by id and delivers outbound messages
// to them. It implements room.Sender for the coordinator. Room
// membership itself lives in the coordinator; the hub only knows
// connections.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*WSClient

	Register   chan *WSClient
	Unregister chan *WSClient
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*WSClient),
		Register:   make(chan *WSClient),
		Unregister: make(chan *WSClient),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			incConnections()

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				decConnections()
			}
			h.mu.Unlock()
		}
	}
}

// Send queues msg for the connection. Unknown connections and slow
// consumers are dropped, never waited on.
func (h *Hub) Send(connID string, msg *room.Message) {
	h.mu.RLock()
	client, ok := h.clients[connID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	if client.enqueue(msg) {
		incDelivered()
	} else {
		incDropped()
	}
}

func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
