package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

// Client wraps one live connection. gorilla/websocket allows only a single
// concurrent writer, so every send goes through the client's write mutex.
type Client struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

// Send marshals the event and writes it as one text frame.
func (c *Client) Send(event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// Registry tracks live WebSocket connections. It is independent of the
// conversation memory store: a connection id and a logical session id are
// different things.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]*Client)}
}

func (r *Registry) Add(id string, conn *websocket.Conn) *Client {
	client := &Client{id: id, conn: conn}
	r.mu.Lock()
	r.clients[id] = client
	r.mu.Unlock()
	return client
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.clients, id)
	r.mu.Unlock()
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// Broadcast sends the event to every open connection, best-effort: a failed
// send is logged and the loop continues.
func (r *Registry) Broadcast(event Event) {
	r.mu.RLock()
	clients := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}
	r.mu.RUnlock()

	for _, c := range clients {
		if err := c.Send(event); err != nil {
			slog.Error("broadcast send failed", "conn", c.id, "error", err)
		}
	}
}
