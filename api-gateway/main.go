package main

import (
	"log"
	"net/http"
	"strings"

	"quoteflow-backend/api-gateway/handlers"
	"quoteflow-backend/api-gateway/middleware"
	"quoteflow-backend/api-gateway/routes"
	"quoteflow-backend/shared/config"
	"quoteflow-backend/shared/database"
	"quoteflow-backend/shared/database/models"
	"quoteflow-backend/shared/utils/cache"
	"quoteflow-backend/shared/utils/permission"

	_ "quoteflow-backend/docs/swagger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title QuoteFlow API
// @version 1.0
// @description API documentation for the QuoteFlow CRM platform
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@quoteflow.com

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8000
// @BasePath /api
// @schemes http https

// @tag.name auth
// @tag.description Authentication operations

// @tag.name companies
// @tag.description Company management operations

// @tag.name opportunities
// @tag.description Opportunity management operations

// @tag.name assets
// @tag.description Asset management operations

// @tag.name quotes
// @tag.description Worldwide quote management operations

// @tag.name attachments
// @tag.description Attachment management operations

// @tag.name activity
// @tag.description Ownership change audit and notifications

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.

func main() {
	// Load configuration
	config.LoadConfig()

	// Initialize database
	if err := database.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDatabase()

	// Initialize Redis-backed cache (access decisions + rate limiting)
	if err := cache.InitCacheManager(); err != nil {
		log.Printf("⚠️ Redis not available, access caching and rate limiting degraded: %v", err)
	}

	// Global rate limit configuration from environment variables
	globalRateConfig := middleware.NewRateLimitConfig()

	router := gin.Default()

	// Add CORS middleware
	router.Use(cors.Default())

	// Global rate limiter middleware
	router.Use(middleware.GlobalRateLimitMiddleware(globalRateConfig))

	// Health check endpoint
	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "API Gateway is running", "Port": "8000"})
	})

	// Auth routes (handled locally, no capability required for login)
	authHandler := handlers.NewAuthHandler(database.DB)
	router.POST("/api/auth/login", authHandler.Login)
	router.POST("/api/auth/refresh", authHandler.Refresh)
	router.GET("/api/auth/me",
		middleware.RequireAuthentication(),
		authHandler.Me)

	// Company routes
	router.GET("/api/companies",
		middleware.RequireAuthentication(),
		routes.ProxyToService("crm"))
	router.POST("/api/companies",
		middleware.RequireAuthentication(),
		routes.ProxyToService("crm"))
	router.GET("/api/companies/:id",
		middleware.RequireCapability(models.EntityKindCompany, permission.ActionView),
		routes.ProxyToService("crm"))
	router.PUT("/api/companies/:id",
		middleware.RequireCapability(models.EntityKindCompany, permission.ActionUpdate),
		routes.ProxyToService("crm"))
	router.DELETE("/api/companies/:id",
		middleware.RequireCapability(models.EntityKindCompany, permission.ActionDelete),
		routes.ProxyToService("crm"))
	router.PATCH("/api/companies/:id/ownership",
		middleware.RequireCapability(models.EntityKindCompany, permission.ActionChangeOwnership),
		routes.ProxyToService("crm"))

	// Opportunity routes
	router.GET("/api/opportunities",
		middleware.RequireAuthentication(),
		routes.ProxyToService("crm"))
	router.POST("/api/opportunities",
		middleware.RequireAuthentication(),
		routes.ProxyToService("crm"))
	router.GET("/api/opportunities/:id",
		middleware.RequireCapability(models.EntityKindOpportunity, permission.ActionView),
		routes.ProxyToService("crm"))
	router.PUT("/api/opportunities/:id",
		middleware.RequireCapability(models.EntityKindOpportunity, permission.ActionUpdate),
		routes.ProxyToService("crm"))
	router.DELETE("/api/opportunities/:id",
		middleware.RequireCapability(models.EntityKindOpportunity, permission.ActionDelete),
		routes.ProxyToService("crm"))
	router.PATCH("/api/opportunities/:id/ownership",
		middleware.RequireCapability(models.EntityKindOpportunity, permission.ActionChangeOwnership),
		routes.ProxyToService("crm"))

	// Asset routes
	router.GET("/api/assets",
		middleware.RequireAuthentication(),
		routes.ProxyToService("crm"))
	router.POST("/api/assets",
		middleware.RequireAuthentication(),
		routes.ProxyToService("crm"))
	router.GET("/api/assets/:id",
		middleware.RequireCapability(models.EntityKindAsset, permission.ActionView),
		routes.ProxyToService("crm"))
	router.DELETE("/api/assets/:id",
		middleware.RequireCapability(models.EntityKindAsset, permission.ActionDelete),
		routes.ProxyToService("crm"))
	router.PATCH("/api/assets/:id/ownership",
		middleware.RequireCapability(models.EntityKindAsset, permission.ActionChangeOwnership),
		routes.ProxyToService("crm"))

	// Quote routes
	router.GET("/api/quotes",
		middleware.RequireAuthentication(),
		routes.ProxyToService("crm"))
	router.POST("/api/quotes",
		middleware.RequireAuthentication(),
		routes.ProxyToService("crm"))
	router.GET("/api/quotes/:id",
		middleware.RequireCapability(models.EntityKindQuote, permission.ActionView),
		routes.ProxyToService("crm"))
	router.GET("/api/quotes/:id/versions",
		middleware.RequireCapability(models.EntityKindQuote, permission.ActionView),
		routes.ProxyToService("crm"))
	router.PATCH("/api/quotes/:id/ownership",
		middleware.RequireCapability(models.EntityKindQuote, permission.ActionChangeOwnership),
		routes.ProxyToService("crm"))

	// Attachment routes
	router.GET("/api/attachments",
		middleware.RequireAuthentication(),
		routes.ProxyToService("crm"))
	router.POST("/api/attachments",
		middleware.RequireAuthentication(),
		routes.ProxyToService("crm"))
	router.GET("/api/attachments/:id/download",
		middleware.RequireAuthentication(),
		routes.ProxyToService("crm"))
	router.DELETE("/api/attachments/:id",
		middleware.RequireAuthentication(),
		routes.ProxyToService("crm"))

	// Activity service routes
	router.GET("/api/activity/ownership-changes",
		middleware.RequireAuthentication(),
		routes.ProxyToService("activity"))
	router.GET("/api/activity/notifications/:user_id",
		middleware.RequireAuthentication(),
		routes.ProxyToService("activity"))
	router.PATCH("/api/activity/notifications/:id/read",
		middleware.RequireAuthentication(),
		routes.ProxyToService("activity"))

	// WebSocket routes
	router.GET("/ws/activity/:user_id",
		routes.ProxyToService("activity"))

	// Swagger documentation UI
	router.GET("/swagger/*any", func(c *gin.Context) {
		if gin.Mode() == gin.DebugMode {
			ginSwagger.WrapHandler(swaggerFiles.Handler)(c)
		} else {
			c.JSON(http.StatusNotFound, gin.H{
				"message": "Swagger documentation not available in production",
			})
		}
	})

	// Server Start
	port := strings.Split(config.GetConfig().APIGatewayURL, ":")[2]
	log.Printf("API Gateway is running on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
