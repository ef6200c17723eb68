// Package feed pushes moderation queue changes to connected administrators
// over WebSocket.
package feed

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"dndinfo/internal/domain/catalog"
	"dndinfo/internal/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4 * 1024
	sendBuffer = 64
)

// connection is one subscribed browser tab.
type connection struct {
	userID int64
	conn   *websocket.Conn
	send   chan []byte
}

// Hub fans catalog events out to every connection. It implements catalog.Publisher.
type Hub struct {
	mu          sync.RWMutex
	connections map[*connection]struct{}
	log         *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{connections: make(map[*connection]struct{}), log: log}
}

// Clients reports the number of open connections.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// Publish queues e for every connection. Slow clients miss events rather
// than stall the caller.
func (h *Hub) Publish(e catalog.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		h.log.Error("feed event encode failed", "error", err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.connections {
		select {
		case c.send <- data:
		default:
			h.log.Warn("feed client too slow, event dropped", "user_id", c.userID, "type", e.Type)
		}
	}
}

func (h *Hub) register(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[c] = struct{}{}
}

func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.connections[c]; ok {
		delete(h.connections, c)
		close(c.send)
	}
}

// Serve registers conn and pumps events to it until the client goes away.
func (h *Hub) Serve(conn *websocket.Conn, userID int64) {
	c := &connection{userID: userID, conn: conn, send: make(chan []byte, sendBuffer)}
	h.register(c)
	h.log.Info("feed client connected", "user_id", userID)

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) readPump(c *connection) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
		h.log.Info("feed client disconnected", "user_id", c.userID)
	}()

	c.conn.SetReadLimit(maxMsgSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("feed read failed", "user_id", c.userID, "error", err)
			}
			return
		}

		var in struct {
			Type string `json:"type"`
		}
		if json.Unmarshal(msg, &in) == nil && in.Type == "ping" {
			h.reply(c, []byte(`{"type":"pong"}`))
		}
	}
}

func (h *Hub) reply(c *connection, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.connections[c]; !ok {
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
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
