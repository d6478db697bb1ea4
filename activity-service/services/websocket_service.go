package services

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"quoteflow-backend/shared/config"
	"quoteflow-backend/shared/database/models/activity"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// WebSocketManager handles all WebSocket connections
type WebSocketManager struct {
	clients    map[string]*websocket.Conn // userID -> connection
	mutex      sync.RWMutex
	upgrader   websocket.Upgrader
	register   chan *ClientConnection
	unregister chan *ClientConnection
}

// ClientConnection represents a client WebSocket connection
type ClientConnection struct {
	UserID     string
	Connection *websocket.Conn
}

// Global WebSocket manager instance
var wsManager *WebSocketManager
var once sync.Once

// GetWebSocketManager returns singleton WebSocket manager
func GetWebSocketManager() *WebSocketManager {
	once.Do(func() {
		wsManager = &WebSocketManager{
			clients: make(map[string]*websocket.Conn),
			upgrader: websocket.Upgrader{
				CheckOrigin: func(r *http.Request) bool {
					origin := r.Header.Get("Origin")
					if origin == config.GetConfig().FrontendURL {
						return true
					}
					log.Printf("🚫 WebSocket connection rejected from origin: %s", origin)
					return false
				},
			},
			register:   make(chan *ClientConnection, 100),
			unregister: make(chan *ClientConnection, 100),
		}
		go wsManager.run()
	})
	return wsManager
}

// run handles WebSocket manager event loop
func (wsm *WebSocketManager) run() {
	for {
		select {
		case client := <-wsm.register:
			wsm.registerClient(client)

		case client := <-wsm.unregister:
			wsm.unregisterClient(client)
		}
	}
}

// registerClient adds a new client connection
func (wsm *WebSocketManager) registerClient(client *ClientConnection) {
	wsm.mutex.Lock()
	defer wsm.mutex.Unlock()

	// Close existing connection if any
	if existingConn, exists := wsm.clients[client.UserID]; exists {
		existingConn.Close()
	}

	wsm.clients[client.UserID] = client.Connection
	log.Printf("🔌 WebSocket client connected: %s (Total: %d)", client.UserID, len(wsm.clients))

	welcomeMsg := &activity.WebSocketMessage{
		Type:      "connection",
		Level:     activity.NotificationLevelInfo,
		Title:     "🔌 Connected",
		Message:   "WebSocket connection established",
		Timestamp: time.Now(),
		UserID:    parseUUID(client.UserID),
	}
	wsm.sendToClient(client.UserID, welcomeMsg)
}

// unregisterClient removes a client connection
func (wsm *WebSocketManager) unregisterClient(client *ClientConnection) {
	wsm.mutex.Lock()
	defer wsm.mutex.Unlock()

	if _, exists := wsm.clients[client.UserID]; exists {
		delete(wsm.clients, client.UserID)
		client.Connection.Close()
		log.Printf("🔌 WebSocket client disconnected: %s (Total: %d)", client.UserID, len(wsm.clients))
	}
}

// SendToUser sends message to specific user
func (wsm *WebSocketManager) SendToUser(userID string, message *activity.WebSocketMessage) error {
	wsm.mutex.RLock()
	_, exists := wsm.clients[userID]
	wsm.mutex.RUnlock()

	if !exists {
		return fmt.Errorf("user %s not connected", userID)
	}

	return wsm.sendToClient(userID, message)
}

// sendToClient sends message to specific client connection
func (wsm *WebSocketManager) sendToClient(userID string, message *activity.WebSocketMessage) error {
	wsm.mutex.RLock()
	conn, exists := wsm.clients[userID]
	wsm.mutex.RUnlock()

	if !exists {
		return fmt.Errorf("user %s not connected", userID)
	}

	err := conn.WriteJSON(message)
	if err != nil {
		log.Printf("❌ Failed to send message to user %s: %v", userID, err)
		// Remove failed connection
		go func() {
			wsm.unregister <- &ClientConnection{UserID: userID, Connection: conn}
		}()
		return err
	}

	return nil
}

// HandleWebSocketConnection upgrades HTTP connection to WebSocket
func (wsm *WebSocketManager) HandleWebSocketConnection(c *gin.Context) {
	userID := c.Param("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID required"})
		return
	}

	conn, err := wsm.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ Failed to upgrade WebSocket: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade connection"})
		return
	}

	client := &ClientConnection{
		UserID:     userID,
		Connection: conn,
	}

	wsm.register <- client

	defer func() {
		wsm.unregister <- client
	}()

	// Keep connection alive and handle incoming messages
	for {
		var message map[string]interface{}
		err := conn.ReadJSON(&message)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("❌ WebSocket error for user %s: %v", userID, err)
			}
			break
		}

		if msgType, ok := message["type"].(string); ok {
			switch msgType {
			case "ping":
				pongMsg := &activity.WebSocketMessage{
					Type:      "pong",
					Level:     activity.NotificationLevelInfo,
					Message:   "pong",
					Timestamp: time.Now(),
					UserID:    parseUUID(userID),
				}
				wsm.sendToClient(userID, pongMsg)
			}
		}
	}
}

// GetConnectionCount returns number of active connections
func (wsm *WebSocketManager) GetConnectionCount() int {
	wsm.mutex.RLock()
	defer wsm.mutex.RUnlock()
	return len(wsm.clients)
}

// parseUUID safely parses UUID string
func parseUUID(str string) *uuid.UUID {
	if id, err := uuid.Parse(str); err == nil {
		return &id
	}
	return nil
}
