// Package feed pushes booking and payment events to connected websocket clients.
// Admins see every event; customers only see events about their own bookings.
package feed

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"musicstudio/internal/domain/access"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4 * 1024
	sendBuffer = 64
)

// connection is a single websocket client.
type connection struct {
	actor access.Actor
	conn  *websocket.Conn
	send  chan []byte
}

type Hub struct {
	mu       sync.RWMutex
	conns    map[*connection]struct{}
	upgrader websocket.Upgrader
	loggerf  func(format string, args ...interface{})
	now      func() time.Time
}

// NewHub accepts upgrades from requests without an Origin header and from the
// listed origins.
func NewHub(allowedOrigins []string, loggerf func(format string, args ...interface{})) *Hub {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return &Hub{
		conns: make(map[*connection]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed[origin]
			},
		},
		loggerf: loggerf,
		now:     time.Now,
	}
}

// Clients returns the number of open connections.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func (h *Hub) register(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c] = struct{}{}
}

func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[c]; ok {
		delete(h.conns, c)
		close(c.send)
	}
}

// publish delivers the event to admins and to the owner of the booking.
func (h *Hub) publish(ownerID int64, event Event) {
	if event.At.IsZero() {
		event.At = h.now()
	}
	data, err := json.Marshal(event)
	if err != nil {
		h.loggerf("level=error msg=encode feed event failed type=%s err=%v", event.Type, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.conns {
		if !c.actor.IsAdmin() && c.actor.UserID != ownerID {
			continue
		}
		select {
		case c.send <- data:
		default:
			// client too slow, skip
		}
	}
}

// serve registers the connection and runs its pumps until the client goes away.
func (h *Hub) serve(conn *websocket.Conn, actor access.Actor) {
	c := &connection{
		actor: actor,
		conn:  conn,
		send:  make(chan []byte, sendBuffer),
	}
	h.register(c)
	h.loggerf("level=info msg=feed client connected user_id=%d role=%s", actor.UserID, actor.Role)

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) readPump(c *connection) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
		h.loggerf("level=info msg=feed client disconnected user_id=%d", c.actor.UserID)
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.loggerf("level=warn msg=feed read failed user_id=%d err=%v", c.actor.UserID, err)
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.reply(c, Event{Type: EventError, Payload: errorPayload{Code: "INVALID_JSON", Message: "Failed to parse message"}})
			continue
		}

		switch msg.Type {
		case "ping":
			h.reply(c, Event{Type: EventPong})
		default:
			h.reply(c, Event{Type: EventError, Payload: errorPayload{Code: "UNKNOWN_TYPE", Message: "Unknown message type: " + msg.Type}})
		}
	}
}

func (h *Hub) reply(c *connection, event Event) {
	event.At = h.now()
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.conns[c]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (h *Hub) writePump(c *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
