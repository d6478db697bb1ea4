package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quoteflow-backend/shared/utils/cache"
)

func setupRateLimitedRouter(t *testing.T, cfg RateLimitConfig) (*gin.Engine, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	cache.InitCacheManagerWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.InitCacheManagerWithClient(nil) })

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GlobalRateLimitMiddleware(cfg))
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router, mr
}

func ping(router *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimitAllowsTrafficUnderLimit(t *testing.T) {
	router, _ := setupRateLimitedRouter(t, RateLimitConfig{
		MaxRequests:   100,
		TimeWindow:    time.Minute,
		BlockDuration: time.Minute,
	})

	for i := 1; i <= 100; i++ {
		w := ping(router)
		require.Equalf(t, http.StatusOK, w.Code, "request %d", i)
	}
}

func TestRateLimitBlocksOverLimit(t *testing.T) {
	router, mr := setupRateLimitedRouter(t, RateLimitConfig{
		MaxRequests:   3,
		TimeWindow:    time.Minute,
		BlockDuration: 5 * time.Minute,
	})

	for i := 1; i <= 3; i++ {
		w := ping(router)
		require.Equalf(t, http.StatusOK, w.Code, "request %d", i)
	}

	w := ping(router)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "retry_after")

	// block marker now short-circuits before the counter
	w = ping(router)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// and clears after the block duration
	mr.FastForward(6 * time.Minute)
	w = ping(router)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitPassesThroughWithoutRedis(t *testing.T) {
	cache.InitCacheManagerWithClient(nil)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GlobalRateLimitMiddleware(RateLimitConfig{MaxRequests: 1, TimeWindow: time.Minute, BlockDuration: time.Minute}))
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	for i := 1; i <= 3; i++ {
		w := ping(router)
		require.Equal(t, http.StatusOK, w.Code)
	}
}
