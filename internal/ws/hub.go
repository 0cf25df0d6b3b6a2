package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go-inventory-tracker/internal/events"

	"github.com/gofiber/contrib/websocket"
	"github.com/rs/zerolog/log"
)

const (
	broadcastBuffer = 256
	writeWait       = 5 * time.Second
)

// Hub fans stock events out to every connected websocket client.
type Hub struct {
	Clients    map[*websocket.Conn]bool
	Register   chan *websocket.Conn
	Unregister chan *websocket.Conn
	Broadcast  chan []byte
	done       chan struct{}
	mutex      sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[*websocket.Conn]bool),
		Register:   make(chan *websocket.Conn),
		Unregister: make(chan *websocket.Conn),
		Broadcast:  make(chan []byte, broadcastBuffer),
		done:       make(chan struct{}),
	}
}

// Run serves register/unregister/broadcast until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for conn := range h.Clients {
				conn.Close()
				delete(h.Clients, conn)
			}
			h.mutex.Unlock()
			return

		case conn := <-h.Register:
			h.mutex.Lock()
			h.Clients[conn] = true
			h.mutex.Unlock()
			log.Debug().Int("clients", h.ClientCount()).Msg("New WS client connected")

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.Clients[conn]; ok {
				delete(h.Clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for conn := range h.Clients {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					delete(h.Clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.Clients)
}

// Publish queues event for broadcast. A full queue drops the event rather
// than stalling the request that produced it.
func (h *Hub) Publish(_ context.Context, event events.StockEvent) error {
	msg, err := json.Marshal(event)
	if err != nil {
		return err
	}

	select {
	case h.Broadcast <- msg:
	default:
		log.Warn().Str("action", event.Action).Msg("WS broadcast queue full, dropping event")
	}
	return nil
}

// Serve is the per-connection handler mounted on the websocket route.
func (h *Hub) Serve(c *websocket.Conn) {
	if !h.join(c) {
		c.Close()
		return
	}
	defer h.leave(c)

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}

// join hands c to the run loop; false once the hub has stopped.
func (h *Hub) join(c *websocket.Conn) bool {
	select {
	case h.Register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *websocket.Conn) {
	select {
	case h.Unregister <- c:
	case <-h.done:
	}
}
