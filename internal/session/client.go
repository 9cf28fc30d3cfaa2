package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

const (
	writeWait         = 10 * time.Second
	pingPeriod        = 30 * time.Second
	defaultMaxMsgSize = 32 << 20 // image data URLs ride inside messages
)

// WSClient is one websocket connection bound to a session.
type WSClient struct {
	id      string
	session *Session
	conn    *websocket.Conn
	send    chan []byte
	maxMsg  int64
}

// NewWSClient wraps a websocket connection. maxMsg bounds inbound
// message size in bytes; zero or negative picks the default.
func NewWSClient(session *Session, conn *websocket.Conn, maxMsg int64) *WSClient {
	if maxMsg <= 0 {
		maxMsg = defaultMaxMsgSize
	}
	return &WSClient{
		id:      uuid.New().String(),
		session: session,
		conn:    conn,
		send:    make(chan []byte, 256),
		maxMsg:  maxMsg,
	}
}

func (c *WSClient) ReadPump(ctx context.Context) {
	defer func() {
		c.session.Detach(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(c.maxMsg)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway {
				return
			}
			slog.Debug("read error", "error", err, "session", c.session.ID, "client", c.id)
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Warn("invalid message", "error", err, "session", c.session.ID, "client", c.id)
			continue
		}

		c.session.Handle(&msg)
	}
}

func (c *WSClient) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}

			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				slog.Debug("write error", "error", err, "session", c.session.ID, "client", c.id)
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

func (c *WSClient) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal message", "error", err)
		return
	}

	select {
	case c.send <- data:
	default:
		slog.Warn("client send buffer full, dropping message", "session", c.session.ID, "client", c.id)
	}
}

func (c *WSClient) disconnect(reason string) {
	c.conn.Close(websocket.StatusGoingAway, reason)
}
