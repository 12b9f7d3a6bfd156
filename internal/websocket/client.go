package websocket

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	pingInterval   = 30 * time.Second
	maxFrameSize   = 512 * 1024
	outboundBuffer = 64
)

// WSClient is one live connection. Outbound traffic goes through the
// buffered Message channel; the done channel coordinates pump shutdown.
type WSClient struct {
	Conn    *websocket.Conn
	Message chan any
	ID      string

	done     chan struct{}
	mu       sync.Mutex // guards Conn writes and isClosed
	isClosed bool
}

func newClient(conn *websocket.Conn, id string) *WSClient {
	return &WSClient{
		Conn:    conn,
		Message: make(chan any, outboundBuffer),
		ID:      id,
		done:    make(chan struct{}),
	}
}

// enqueue offers msg to the outbound channel without blocking. Returns
// false when the client is shutting down or its buffer is full.
func (cl *WSClient) enqueue(msg any) bool {
	select {
	case <-cl.done:
		return false
	case cl.Message <- msg:
		return true
	default:
		return false
	}
}

func (cl *WSClient) keepAlive() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-cl.done:
			return
		case <-ticker.C:
			cl.mu.Lock()
			if cl.isClosed {
				cl.mu.Unlock()
				return
			}
			err := cl.Conn.WriteMessage(websocket.PingMessage, nil)
			cl.mu.Unlock()

			if err != nil {
				log.Printf("ping error for connection %s: %v", cl.ID, err)
				return
			}
		}
	}
}

func (cl *WSClient) writeMessage() {
	defer func() {
		cl.mu.Lock()
		cl.isClosed = true
		cl.Conn.Close()
		cl.mu.Unlock()
	}()

	for {
		select {
		case <-cl.done:
			return
		case msg := <-cl.Message:
			cl.mu.Lock()
			if cl.isClosed {
				cl.mu.Unlock()
				return
			}
			err := cl.Conn.WriteJSON(msg)
			cl.mu.Unlock()

			if err != nil {
				log.Printf("error sending to connection %s: %v", cl.ID, err)
				return
			}
		}
	}
}

func (cl *WSClient) readMessage(h *Handler) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("recovered from panic in readMessage: %v", r)
		}

		close(cl.done)
		h.hub.Unregister <- cl
		h.rooms.Disconnect(cl.ID)
		log.Printf("connection %s closed", cl.ID)
	}()

	cl.Conn.SetReadLimit(maxFrameSize)

	for {
		_, payload, err := cl.Conn.ReadMessage()
		if err != nil {
			if closeErr, ok := err.(*websocket.CloseError); ok {
				if closeErr.Code == websocket.CloseNormalClosure ||
					closeErr.Code == websocket.CloseGoingAway ||
					closeErr.Code == websocket.CloseNoStatusReceived {
					break
				}
			}
			log.Printf("error reading from connection %s: %v", cl.ID, err)
			break
		}

		h.dispatch(cl, payload)
	}
}
