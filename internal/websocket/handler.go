package websocket

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs attaches a websocket connection to the hub as the session's live
// push channel. Blocks until the connection closes.
func ServeWs(hub *Hub, c *websocket.Conn, sessionID uuid.UUID, connectionID string) {
	client := &Client{
		Hub:          hub,
		Conn:         c,
		SessionID:    sessionID,
		ConnectionID: connectionID,
		Send:         make(chan []byte, 256),
	}
	client.Hub.register <- client

	go client.writePump()
	client.readPump() // Run readPump in current goroutine (handler)
}
