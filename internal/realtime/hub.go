package realtime

import (
	"log"
	"net/http"
	"sync"

	"crm-backend/internal/metrics"

	"github.com/gorilla/websocket"
)

// EventType mirrors the row-change kinds delivered to subscribers.
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// Event is one row change on a CRM table, delivered to every websocket
// client of the owning tenant.
type Event struct {
	Table  string      `json:"table"`
	Type   EventType   `json:"type"`
	Record interface{} `json:"record"`
	UserID int         `json:"-"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type client struct {
	conn   *websocket.Conn
	userID int
	send   chan Event
}

// Hub fans row-change events out to connected websocket clients, filtered
// by owning user id.
type Hub struct {
	clients    map[*client]bool
	clientsMux sync.Mutex
	broadcast  chan Event
}

func NewHub() *Hub {
	return &Hub{
		clients:   make(map[*client]bool),
		broadcast: make(chan Event, 64),
	}
}

// Run dispatches broadcast events to subscribed clients. Slow clients are
// dropped rather than blocking the dispatch loop.
func (h *Hub) Run() {
	for event := range h.broadcast {
		h.clientsMux.Lock()
		for c := range h.clients {
			if c.userID != event.UserID {
				continue
			}
			select {
			case c.send <- event:
			default:
				close(c.send)
				delete(h.clients, c)
				metrics.RealtimeClients.Dec()
			}
		}
		h.clientsMux.Unlock()
	}
}

// Publish enqueues an event for delivery. Never blocks the caller; if the
// hub is saturated the event is dropped (clients reconcile on next fetch).
func (h *Hub) Publish(event Event) {
	select {
	case h.broadcast <- event:
	default:
		log.Printf("[Realtime] dropping event for table %s (hub saturated)", event.Table)
	}
}

// Subscribe upgrades the request to a websocket and streams the tenant's
// change events until the client disconnects.
func (h *Hub) Subscribe(w http.ResponseWriter, r *http.Request, userID int) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Realtime] upgrade failed: %v", err)
		return
	}

	c := &client{conn: conn, userID: userID, send: make(chan Event, 16)}

	h.clientsMux.Lock()
	h.clients[c] = true
	h.clientsMux.Unlock()
	metrics.RealtimeClients.Inc()

	go c.writeLoop()
	c.readLoop(h)
}

func (c *client) writeLoop() {
	for event := range c.send {
		if err := c.conn.WriteJSON(event); err != nil {
			return
		}
	}
}

// readLoop discards inbound frames; its job is detecting disconnects.
func (c *client) readLoop(h *Hub) {
	defer func() {
		h.clientsMux.Lock()
		if h.clients[c] {
			delete(h.clients, c)
			close(c.send)
			metrics.RealtimeClients.Dec()
		}
		h.clientsMux.Unlock()
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
