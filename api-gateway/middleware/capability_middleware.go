package middleware

import (
	"errors"
	"net/http"
	"strings"

	"quoteflow-backend/shared/config"
	"quoteflow-backend/shared/database"
	"quoteflow-backend/shared/utils/permission"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// RequireCapability creates a middleware that checks whether the caller may
// perform the given action on the entity addressed by the :id path parameter
func RequireCapability(kind, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := extractUserIDFromToken(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or missing token",
				"code":  "UNAUTHORIZED",
			})
			c.Abort()
			return
		}

		entityID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid entity ID format",
				"code":  "BAD_REQUEST",
			})
			c.Abort()
			return
		}

		allowed, err := permission.CheckEntityAccess(database.DB, userID, kind, entityID, action)
		if errors.Is(err, permission.ErrEntityNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Entity not found",
				"code":  "NOT_FOUND",
			})
			c.Abort()
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to check permissions",
				"code":  "PERMISSION_CHECK_FAILED",
			})
			c.Abort()
			return
		}

		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Insufficient permissions",
				"code":  "FORBIDDEN",
				"details": gin.H{
					"required_action": action,
					"entity_kind":     kind,
				},
			})
			c.Abort()
			return
		}

		// Add capability info to context for downstream services
		c.Set("user_id", userID)
		c.Set("entity_kind", kind)
		c.Set("action", action)
		c.Set("capability_checked", true)

		c.Next()
	}
}

// RequireAuthentication only checks if user is authenticated (no capability check)
func RequireAuthentication() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := extractUserIDFromToken(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or missing token",
				"code":  "UNAUTHORIZED",
			})
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}

// extractUserIDFromToken extracts user ID from JWT token
func extractUserIDFromToken(c *gin.Context) (uuid.UUID, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return uuid.Nil, jwt.ErrInvalidKey
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return uuid.Nil, jwt.ErrInvalidKey
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		cfg := config.GetConfig()
		return []byte(cfg.JWTSecret), nil
	})

	if err != nil {
		return uuid.Nil, err
	}

	if !token.Valid {
		return uuid.Nil, jwt.ErrInvalidKey
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok {
		if userIDValue, exists := claims["user_id"]; exists {
			if userIDStr, ok := userIDValue.(string); ok {
				return uuid.Parse(userIDStr)
			}
		}
	}

	return uuid.Nil, jwt.ErrInvalidKey
}
