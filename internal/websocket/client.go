package websocket

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Connection keepalive tuning. pingPeriod must stay under pongWait or
// healthy peers get dropped between pings.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Client binds one websocket connection to the hub under an
// authenticated user ID.
type Client struct {
	Hub    *Hub
	UserID uuid.UUID
	Conn   *websocket.Conn

	// Outbound notifications, buffered so a slow connection stalls only
	// itself.
	Send chan []byte
}

// ReadPump drains the connection until it dies. Clients never send
// application messages; the loop exists to answer pings and to notice
// the disconnect.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error for user %s: %v", c.UserID, err)
			}
			return
		}
	}
}

// WritePump relays queued notifications to the connection and keeps it
// alive with periodic pings. It exits on the first write failure or when
// the hub closes the send channel.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.writeBatched(message); err != nil {
				log.Printf("WebSocket write error for user %s: %v", c.UserID, err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// writeBatched sends one text frame holding the message plus whatever
// notifications queued up behind it, newline separated.
func (c *Client) writeBatched(message []byte) error {
	w, err := c.Conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}
	w.Write(message)
	for n := len(c.Send); n > 0; n-- {
		w.Write([]byte{'\n'})
		w.Write(<-c.Send)
	}
	return w.Close()
}
