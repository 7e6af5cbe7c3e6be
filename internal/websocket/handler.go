package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs pumps frames to one connection until it closes.
func ServeWs(hub *Hub, c *websocket.Conn, userID string) {
	client := &Client{Hub: hub, Conn: c, UserID: userID, Send: make(chan []byte, 256)}
	if !hub.add(client) {
		c.Close()
		return
	}

	go client.writePump()
	client.readPump()
}
