package hub

import (
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Clients only ever send control frames.
	maxReadSize = 512
)

// Client is one websocket subscriber. It holds at most one pending frame.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan Frame
}

// NewClient registers conn with the hub. It returns nil if the hub has
// stopped.
func NewClient(h *Hub, conn *websocket.Conn) *Client {
	c := &Client{
		hub:  h,
		conn: conn,
		send: make(chan Frame, 1),
	}
	select {
	case h.register <- c:
		return c
	case <-h.done:
		return nil
	}
}

// Run serves the connection until the peer goes away or the hub stops.
func (c *Client) Run() {
	go c.write()
	c.read()
}

// read discards incoming messages so pongs and closes are processed.
func (c *Client) read() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxReadSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// write is the only goroutine writing to the connection.
func (c *Client) write() {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case f, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, f.Data); err != nil {
				return
			}

		case <-ping.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
