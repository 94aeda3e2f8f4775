package ws

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"joylife/backend/internal/timer"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

type timerEvent struct {
	Type  string         `json:"type"`
	Timer timer.Snapshot `json:"timer"`
}

// client wraps one WebSocket connection. Snapshots are queued on a buffered
// channel; if the peer cannot keep up the oldest update is dropped rather
// than blocking the engine's notify path.
type client struct {
	conn *websocket.Conn
	send chan timer.Snapshot
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn: conn,
		send: make(chan timer.Snapshot, 16),
	}
}

func (c *client) enqueue(snap timer.Snapshot) {
	select {
	case c.send <- snap:
	default:
		select {
		case <-c.send:
		default:
		}
		select {
		case c.send <- snap:
		default:
		}
	}
}

// readPump consumes inbound frames only to keep pong handling alive and to
// notice the peer going away.
func (c *client) readPump() {
	defer c.conn.Close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("websocket read error: %v", err)
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case snap := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			payload, err := json.Marshal(timerEvent{Type: "timer", Timer: snap})
			if err != nil {
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
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
