// Package cache provides Redis-based caching for hydrated configurations
// and rendered flat-file exports.
package cache

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"robot-config-studio/config"
)

// CacheService provides Redis-based caching with graceful degradation.
// When Redis is unavailable, operations return errors that callers should
// handle by falling back to the snapshot store.
type CacheService struct {
	client       *redis.Client
	config       config.RedisConfig
	mu           sync.RWMutex
	healthy      bool
	failureCount int
	lastCheck    time.Time

	// Circuit breaker settings
	maxFailures     int
	checkInterval   time.Duration
	recoveryBackoff time.Duration
}

// Key prefixes for different cache types
const (
	PrefixHydratedConfig = "profile:%s:config:hydrated"
	PrefixExportText     = "profile:%s:export:set"
	PrefixValidation     = "profile:%s:validation"
)

// Default TTLs
const (
	DefaultConfigTTL = 24 * time.Hour
	DefaultExportTTL = time.Hour
)

// ErrCacheMiss is returned when a key is absent; callers fall through to
// the authoritative store.
var ErrCacheMiss = redis.Nil

// NewCacheService creates a new CacheService with the provided configuration.
// It attempts to connect to Redis and verifies connectivity.
func NewCacheService(cfg config.RedisConfig) (*CacheService, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("redis is not enabled in configuration")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	cs := &CacheService{
		client:          client,
		config:          cfg,
		healthy:         false,
		failureCount:    0,
		maxFailures:     3,
		checkInterval:   30 * time.Second,
		recoveryBackoff: 5 * time.Second,
	}

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("[CACHE] Initial Redis connection failed: %v", err)
		return cs, nil // Return service in degraded mode
	}

	cs.healthy = true
	cs.lastCheck = time.Now()
	log.Printf("[CACHE] Redis connected successfully at %s", cfg.Address)

	return cs, nil
}

// IsHealthy returns whether Redis is currently available.
func (cs *CacheService) IsHealthy() bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.healthy
}

// recordFailure tracks a Redis operation failure for circuit breaker.
func (cs *CacheService) recordFailure() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.failureCount++
	if cs.failureCount >= cs.maxFailures {
		if cs.healthy {
			log.Printf("[CACHE] Circuit breaker OPEN: Redis marked unhealthy after %d failures", cs.failureCount)
		}
		cs.healthy = false
	}
}

// recordSuccess resets the failure counter on successful operation.
func (cs *CacheService) recordSuccess() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if !cs.healthy {
		log.Printf("[CACHE] Circuit breaker CLOSED: Redis recovered")
	}
	cs.healthy = true
	cs.failureCount = 0
	cs.lastCheck = time.Now()
}

// checkHealth performs a background health check if enough time has passed.
func (cs *CacheService) checkHealth(ctx context.Context) {
	cs.mu.RLock()
	timeSinceCheck := time.Since(cs.lastCheck)
	shouldCheck := !cs.healthy && timeSinceCheck >= cs.checkInterval
	cs.mu.RUnlock()

	if !shouldCheck {
		return
	}

	go func() {
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := cs.client.Ping(pingCtx).Err(); err == nil {
			cs.recordSuccess()
		}
	}()
}

// Get retrieves a value from cache.
func (cs *CacheService) Get(ctx context.Context, key string) (string, error) {
	cs.checkHealth(ctx)

	if !cs.IsHealthy() {
		return "", fmt.Errorf("redis unavailable (circuit breaker open)")
	}

	result, err := cs.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", err // Cache miss, not a failure
		}
		cs.recordFailure()
		return "", fmt.Errorf("redis get failed: %w", err)
	}

	cs.recordSuccess()
	return result, nil
}

// Set stores a value in cache with the given TTL.
func (cs *CacheService) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	cs.checkHealth(ctx)

	if !cs.IsHealthy() {
		return fmt.Errorf("redis unavailable (circuit breaker open)")
	}

	if err := cs.client.Set(ctx, key, value, ttl).Err(); err != nil {
		cs.recordFailure()
		return fmt.Errorf("redis set failed: %w", err)
	}

	cs.recordSuccess()
	return nil
}

// Delete removes keys from cache. Missing keys are not an error.
func (cs *CacheService) Delete(ctx context.Context, keys ...string) error {
	cs.checkHealth(ctx)

	if !cs.IsHealthy() {
		return fmt.Errorf("redis unavailable (circuit breaker open)")
	}

	if err := cs.client.Del(ctx, keys...).Err(); err != nil {
		cs.recordFailure()
		return fmt.Errorf("redis delete failed: %w", err)
	}

	cs.recordSuccess()
	return nil
}

// Close shuts down the Redis client.
func (cs *CacheService) Close() error {
	if cs.client != nil {
		return cs.client.Close()
	}
	return nil
}
