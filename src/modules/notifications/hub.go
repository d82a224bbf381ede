package notifications

import (
	"log"
	"sync"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"vibely/src/core/models"
)

// Store WebSocket connections per recipient
var clients = make(map[uuid.UUID][]*websocket.Conn)
var mu sync.Mutex

var stream = make(chan models.Notification, 64)

// WebSocketHandler keeps a client connection registered for live
// notification delivery until it disconnects.
func WebSocketHandler(c *websocket.Conn) {
	raw, _ := c.Locals("user_id").(string)
	userID, err := uuid.Parse(raw)
	if err != nil {
		log.Println("WebSocket connection without a valid user_id, closing")
		c.Close()
		return
	}

	mu.Lock()
	clients[userID] = append(clients[userID], c)
	mu.Unlock()

	log.Println("New WebSocket client connected for notifications:", userID)

	defer func() {
		unregister(userID, c)
		c.Close()
	}()

	// Keep connection open and listen for incoming messages (optional)
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			log.Println("WebSocket client disconnected:", err)
			break
		}
	}
}

// Dispatch queues a notification for delivery. Never blocks the mutation
// that created it: when the buffer is full the push is dropped, clients
// recover the record over REST.
func Dispatch(notification models.Notification) {
	select {
	case stream <- notification:
	default:
	}
}

// Run delivers queued notifications to the recipient's open connections.
func Run() {
	for notification := range stream {
		mu.Lock()
		for _, conn := range clients[notification.RecipientID] {
			if err := conn.WriteJSON(notification); err != nil {
				log.Println("Error sending notification:", err)
				conn.Close()
			}
		}
		mu.Unlock()
	}
}

func unregister(userID uuid.UUID, c *websocket.Conn) {
	mu.Lock()
	defer mu.Unlock()

	conns := clients[userID]
	for i, conn := range conns {
		if conn == c {
			clients[userID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(clients[userID]) == 0 {
		delete(clients, userID)
	}
}
