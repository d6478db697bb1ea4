package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"quoteflow-backend/shared/config"
)

type CacheManager struct {
	client *redis.Client
	ctx    context.Context
}

// AccessCacheData is a cached entity access decision
type AccessCacheData struct {
	Allowed  bool      `json:"allowed"`
	UserID   string    `json:"user_id"`
	Kind     string    `json:"kind"`
	EntityID string    `json:"entity_id"`
	Action   string    `json:"action"`
	FoundAt  string    `json:"found_at"` // "owner", "grant", "admin"
	CachedAt time.Time `json:"cached_at"`
}

var (
	globalCacheManager *CacheManager
	DefaultTTL         = 15 * time.Minute
)

// InitCacheManager initializes the global cache manager
func InitCacheManager() error {
	cfg := config.GetConfig()

	redisDB, err := strconv.Atoi(cfg.RedisDB)
	if err != nil {
		log.Printf("❌ Invalid Redis DB number: %s, using default 0", cfg.RedisDB)
		redisDB = 0
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       redisDB,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	globalCacheManager = &CacheManager{
		client: client,
		ctx:    ctx,
	}

	log.Printf("✅ Redis Cache Manager initialized successfully - %s:%s DB:%d",
		cfg.RedisHost, cfg.RedisPort, redisDB)

	return nil
}

// InitCacheManagerWithClient wires the global manager onto an existing Redis
// client. A nil client clears the manager.
func InitCacheManagerWithClient(client *redis.Client) {
	if client == nil {
		globalCacheManager = nil
		return
	}
	globalCacheManager = &CacheManager{
		client: client,
		ctx:    context.Background(),
	}
}

// GetCacheManager returns the global cache manager instance
func GetCacheManager() *CacheManager {
	return globalCacheManager
}

// GenerateAccessKey generates a cache key for one access decision
func GenerateAccessKey(userID, kind, entityID, action string) string {
	return fmt.Sprintf("access:user:%s:ent:%s:%s:act:%s", userID, kind, entityID, action)
}

// GenerateEntityPattern matches every cached decision for an entity,
// regardless of user or action
func GenerateEntityPattern(kind, entityID string) string {
	return fmt.Sprintf("access:user:*:ent:%s:%s:act:*", kind, entityID)
}

// SetAccessCache caches an access decision
func (cm *CacheManager) SetAccessCache(userID, kind, entityID, action string, data *AccessCacheData) error {
	if cm == nil || cm.client == nil {
		return fmt.Errorf("cache manager not initialized")
	}

	key := GenerateAccessKey(userID, kind, entityID, action)

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %v", err)
	}

	return cm.client.Set(cm.ctx, key, jsonData, DefaultTTL).Err()
}

// GetAccessCache retrieves a cached access decision, nil on miss
func (cm *CacheManager) GetAccessCache(userID, kind, entityID, action string) (*AccessCacheData, error) {
	if cm == nil || cm.client == nil {
		return nil, fmt.Errorf("cache manager not initialized")
	}

	key := GenerateAccessKey(userID, kind, entityID, action)

	val, err := cm.client.Get(cm.ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var data AccessCacheData
	if err := json.Unmarshal([]byte(val), &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache data: %v", err)
	}

	return &data, nil
}

// InvalidateEntity drops every cached decision for an entity. Called after
// an ownership transfer so both owners observe the new permission surface.
func (cm *CacheManager) InvalidateEntity(kind, entityID string) error {
	if cm == nil || cm.client == nil {
		return fmt.Errorf("cache manager not initialized")
	}

	pattern := GenerateEntityPattern(kind, entityID)

	var deleted int64
	iter := cm.client.Scan(cm.ctx, 0, pattern, 100).Iterator()
	for iter.Next(cm.ctx) {
		if err := cm.client.Del(cm.ctx, iter.Val()).Err(); err != nil {
			return err
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return err
	}

	if deleted > 0 {
		log.Printf("🧹 Invalidated %d cached access decisions for %s:%s", deleted, kind, entityID)
	}

	return nil
}

// IncrementCounter increments a counter key with a TTL set on first use.
// Used by the gateway rate limiter.
func (cm *CacheManager) IncrementCounter(key string, window time.Duration) (int64, error) {
	if cm == nil || cm.client == nil {
		return 0, fmt.Errorf("cache manager not initialized")
	}

	count, err := cm.client.Incr(cm.ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := cm.client.Expire(cm.ctx, key, window).Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}

// SetBlock marks a key as blocked for the given duration
func (cm *CacheManager) SetBlock(key string, duration time.Duration) error {
	if cm == nil || cm.client == nil {
		return fmt.Errorf("cache manager not initialized")
	}
	return cm.client.Set(cm.ctx, key, "blocked", duration).Err()
}

// IsBlocked reports whether a key is currently blocked
func (cm *CacheManager) IsBlocked(key string) (bool, error) {
	if cm == nil || cm.client == nil {
		return false, fmt.Errorf("cache manager not initialized")
	}

	_, err := cm.client.Get(cm.ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
