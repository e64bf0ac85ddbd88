package gateway

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Conn wraps one websocket with buffered read/write pumps. The hub never
// writes to the socket directly; Send enqueues and the write pump drains.
type Conn struct {
	ws         *websocket.Conn
	id         string
	remoteAddr string
	logger     *slog.Logger
	send       chan *Message
	mu         sync.Mutex
	closed     bool
	done       chan struct{}

	// writeMu serializes socket writes between the write pump and Close's
	// final flush.
	writeMu sync.Mutex
}

func NewConn(ws *websocket.Conn, remoteAddr string, logger *slog.Logger) *Conn {
	id := uuid.NewString()
	return &Conn{
		ws:         ws,
		id:         id,
		remoteAddr: clientAddr(remoteAddr),
		logger:     logger.With("connection_id", id),
		send:       make(chan *Message, 64),
		done:       make(chan struct{}),
	}
}

func (c *Conn) ID() string {
	return c.id
}

func (c *Conn) RemoteAddr() string {
	return c.remoteAddr
}

// Send never blocks the hub; a client that cannot keep up loses snapshots,
// which is safe because each one is a full replacement.
func (c *Conn) Send(msg *Message) error {
	select {
	case <-c.done:
		return nil
	case c.send <- msg:
		return nil
	default:
		c.logger.Warn("send buffer full, dropping message", "event", msg.Event)
		return nil
	}
}

// Close flushes whatever is still queued, so a notice enqueued right
// before closing (the forced-disconnect path) reaches the client, then
// sends the close frame and tears the socket down.
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.done)
	c.mu.Unlock()

	c.flush()

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
	return c.ws.Close()
}

// flush drains the send queue onto the socket. Write errors are ignored;
// the connection is going away either way.
func (c *Conn) flush() {
	for {
		select {
		case msg := <-c.send:
			_ = c.writeMessage(msg)
		default:
			return
		}
	}
}

func (c *Conn) writeMessage(msg *Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("marshal error", "error", err)
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

func (c *Conn) readPump(hub *Hub) {
	defer func() {
		c.Close()
		hub.Unregister(c)
	}()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("read error", "error", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Error("unmarshal error", "error", err)
			continue
		}

		hub.Dispatch(c, &msg)
	}
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			// Close owns the final flush and the close frame.
			return
		case msg := <-c.send:
			if err := c.writeMessage(msg); err != nil {
				c.logger.Error("write error", "error", err)
				return
			}

		case <-ticker.C:
			c.writeMu.Lock()
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			err := c.ws.WriteMessage(websocket.PingMessage, nil)
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

// clientAddr normalizes IPv4-mapped IPv6 addresses.
func clientAddr(addr string) string {
	return strings.TrimPrefix(addr, "::ffff:")
}
