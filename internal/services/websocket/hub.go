package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"

	"privacy-guard/internal/services/health"
	"privacy-guard/internal/services/installer"
)

// Message is the envelope for everything sent to dashboard clients.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	mutex      sync.RWMutex

	health   *health.Collector
	interval time.Duration
}

var EventHub *Hub

// NewHub builds a hub that also pushes a health snapshot every interval
// while clients are connected. A nil collector disables that.
func NewHub(collector *health.Collector, interval time.Duration) *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		health:     collector,
		interval:   interval,
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	if h.health != nil && h.interval > 0 {
		go h.broadcastHealth(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for client := range h.clients {
				client.Close()
				delete(h.clients, client)
			}
			h.mutex.Unlock()
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()

		case client := <-h.unregister:
			h.remove(client)

		case message := <-h.broadcast:
			var failed []*websocket.Conn
			h.mutex.RLock()
			for client := range h.clients {
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					failed = append(failed, client)
				}
			}
			h.mutex.RUnlock()
			for _, client := range failed {
				h.remove(client)
			}
		}
	}
}

func (h *Hub) remove(client *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		client.Close()
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Publish queues a message for every connected client. It drops the
// message rather than block when the queue is full.
func (h *Hub) Publish(msgType string, data interface{}) bool {
	payload, err := json.Marshal(Message{Type: msgType, Data: data})
	if err != nil {
		slog.Error("encode websocket message", "type", msgType, "error", err)
		return false
	}
	select {
	case h.broadcast <- payload:
		return true
	default:
		slog.Warn("websocket queue full, dropping message", "type", msgType)
		return false
	}
}

// Notify forwards installer progress to connected dashboards.
func (h *Hub) Notify(e installer.Event) {
	h.Publish(string(e.Type), e)
}

func (h *Hub) broadcastHealth(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if h.ClientCount() == 0 {
			continue
		}
		h.Publish("health", h.health.Collect(ctx))
	}
}

func (h *Hub) Register(conn *websocket.Conn) {
	select {
	case h.register <- conn:
	case <-h.done:
		conn.Close()
	}
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

func HandleWebSocket(c *websocket.Conn) {
	EventHub.Register(c)
	defer EventHub.Unregister(c)

	for {
		_, _, err := c.ReadMessage()
		if err != nil {
			break
		}
	}
}

func InitHub(ctx context.Context, collector *health.Collector, interval time.Duration) *Hub {
	EventHub = NewHub(collector, interval)
	go EventHub.Run(ctx)
	return EventHub
}
