package middleware

import (
	"log"
	"net/http"
	"time"

	"quoteflow-backend/shared/config"
	"quoteflow-backend/shared/utils/cache"

	"github.com/gin-gonic/gin"
)

// RateLimitConfig - Rate limiter configuration
type RateLimitConfig struct {
	MaxRequests   int
	TimeWindow    time.Duration
	BlockDuration time.Duration
}

// NewRateLimitConfig - Creates a new RateLimitConfig from environment variables
func NewRateLimitConfig() RateLimitConfig {
	cfg := config.GetConfig()

	return RateLimitConfig{
		MaxRequests:   cfg.GetRateLimitMaxRequests(),
		TimeWindow:    time.Duration(cfg.GetRateLimitTimeWindowSeconds()) * time.Second,
		BlockDuration: time.Duration(cfg.GetRateLimitBlockDurationMinutes()) * time.Minute,
	}
}

// GlobalRateLimitMiddleware - Global per-IP rate limiting backed by Redis so
// limits hold across gateway restarts and replicas
func GlobalRateLimitMiddleware(cfg RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		cm := cache.GetCacheManager()
		if cm == nil {
			// Redis unavailable, let traffic through rather than failing closed
			c.Next()
			return
		}

		// The request counter and the block marker live in separate key
		// namespaces: the counter key must stay INCR-able while a block
		// marker for the same IP exists.
		clientIP := c.ClientIP()
		countKey := "ratelimit:count:" + clientIP
		blockKey := "ratelimit:block:" + clientIP

		blocked, err := cm.IsBlocked(blockKey)
		if err != nil {
			log.Printf("⚠️ Rate limit check failed for %s: %v", clientIP, err)
			c.Next()
			return
		}
		if blocked {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"message":     "Too many requests from this IP. Please try again later.",
				"retry_after": cfg.BlockDuration.Seconds(),
			})
			c.Abort()
			return
		}

		count, err := cm.IncrementCounter(countKey, cfg.TimeWindow)
		if err != nil {
			log.Printf("⚠️ Rate limit counter failed for %s: %v", clientIP, err)
			c.Next()
			return
		}

		if count > int64(cfg.MaxRequests) {
			if err := cm.SetBlock(blockKey, cfg.BlockDuration); err != nil {
				log.Printf("⚠️ Failed to block %s: %v", clientIP, err)
			}
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"message":     "Too many requests from this IP. Please try again later.",
				"retry_after": cfg.BlockDuration.Seconds(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
