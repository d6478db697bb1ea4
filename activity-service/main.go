package main

import (
	"log"
	"net/http"
	"strings"

	"quoteflow-backend/activity-service/handlers"
	"quoteflow-backend/activity-service/services"
	"quoteflow-backend/shared/config"
	"quoteflow-backend/shared/database"

	"github.com/gin-gonic/gin"
)

// @title Activity Service API
// @version 1.0
// @description Ownership change audit trail & real-time notifications
// @host localhost:8002
// @BasePath /api

func main() {
	// Load configuration
	config.LoadConfig()

	// Initialize database
	if err := database.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDatabase()

	router := gin.Default()

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "activity-service",
			"status":  "healthy",
		})
	})

	// Ownership change routes
	router.POST("/api/activity/ownership-changes", handlers.RecordOwnershipChange)
	router.GET("/api/activity/ownership-changes", handlers.GetOwnershipChanges)

	// Notification routes
	router.GET("/api/activity/notifications/:user_id", handlers.GetNotifications)
	router.PATCH("/api/activity/notifications/:id/read", handlers.MarkNotificationRead)

	// WebSocket endpoint
	wsManager := services.GetWebSocketManager()
	router.GET("/ws/activity/:user_id", wsManager.HandleWebSocketConnection)

	port := strings.Split(config.GetConfig().ActivityServiceURL, ":")[2]
	log.Printf("🔔 Activity Service starting on port %s...", port)
	log.Fatal(router.Run(":" + port))
}
