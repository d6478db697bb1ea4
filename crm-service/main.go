package main

import (
	"log"
	"net/http"
	"strings"

	"quoteflow-backend/crm-service/handlers"
	"quoteflow-backend/crm-service/middleware"
	"quoteflow-backend/crm-service/services"
	"quoteflow-backend/shared/config"
	"quoteflow-backend/shared/database"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func main() {
	// Load configuration
	config.LoadConfig()

	// Initialize database
	if err := database.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDatabase()

	// Verify object storage connectivity at startup
	if _, err := services.NewMinIOService(); err != nil {
		log.Printf("⚠️ MinIO not available, attachment uploads will fail: %v", err)
	}

	router := gin.Default()

	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware())

	// Company routes
	api.GET("/companies", handlers.GetCompanies)
	api.GET("/companies/:id", handlers.GetCompany)
	api.POST("/companies", handlers.CreateCompany)
	api.PUT("/companies/:id", handlers.UpdateCompany)
	api.DELETE("/companies/:id", handlers.DeleteCompany)
	api.PATCH("/companies/:id/ownership", handlers.ChangeCompanyOwnership)

	// Opportunity routes
	api.GET("/opportunities", handlers.GetOpportunities)
	api.GET("/opportunities/:id", handlers.GetOpportunity)
	api.POST("/opportunities", handlers.CreateOpportunity)
	api.PUT("/opportunities/:id", handlers.UpdateOpportunity)
	api.DELETE("/opportunities/:id", handlers.DeleteOpportunity)
	api.PATCH("/opportunities/:id/ownership", handlers.ChangeOpportunityOwnership)

	// Asset routes
	api.GET("/assets", handlers.GetAssets)
	api.GET("/assets/:id", handlers.GetAsset)
	api.POST("/assets", handlers.CreateAsset)
	api.DELETE("/assets/:id", handlers.DeleteAsset)
	api.PATCH("/assets/:id/ownership", handlers.ChangeAssetOwnership)

	// Quote routes
	api.GET("/quotes", handlers.GetQuotes)
	api.GET("/quotes/:id", handlers.GetQuote)
	api.POST("/quotes", handlers.CreateQuote)
	api.GET("/quotes/:id/versions", handlers.GetQuoteVersions)
	api.PATCH("/quotes/:id/ownership", handlers.ChangeQuoteOwnership)

	// Attachment routes
	api.GET("/attachments", handlers.GetAttachments)
	api.POST("/attachments", handlers.UploadAttachment)
	api.GET("/attachments/:id/download", handlers.DownloadAttachment)
	api.DELETE("/attachments/:id", handlers.DeleteAttachment)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "crm",
		})
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Parse port from config URL
	port := strings.Split(config.GetConfig().CRMServiceURL, ":")[2]
	log.Printf("CRM Service starting on port %s...", port)
	router.Run(":" + port)
}
