package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kislikjeka/fintrack/pkg/logger"
)

const (
	// DefaultTTL is how long a finance API response is served without refetching
	DefaultTTL = 60 * time.Second

	// StaleTTL is how long a response stays available as an outage fallback
	StaleTTL = 24 * time.Hour

	// KeyPrefix is the prefix for response cache keys
	KeyPrefix = "fintrack:"

	freshSegment = "fresh:"
	staleSegment = "stale:"
)

// Cache is a Redis-backed store for decoded finance API responses
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

// NewCache creates a response cache; ttl <= 0 uses DefaultTTL
func NewCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Cache{
		client: client,
		ttl:    ttl,
		logger: log.WithField("component", "cache"),
	}
}

// NewClient connects to Redis. addr is either host:port or a redis:// URL.
func NewClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opts = parsed
		if password != "" {
			opts.Password = password
		}
	} else {
		opts = &redis.Options{Addr: addr, Password: password}
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// cachedResponse wraps a payload with the time it was stored
type cachedResponse struct {
	Payload   json.RawMessage `json:"payload"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func freshKey(key string) string { return KeyPrefix + freshSegment + key }
func staleKey(key string) string { return KeyPrefix + staleSegment + key }

// Get decodes the fresh entry for key into dest
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	found, err := c.get(ctx, freshKey(key), dest)
	if err != nil {
		c.logger.Error("cache error", "operation", "get", "key", key, "error", err)
		return false, err
	}
	if found {
		c.logger.Debug("cache hit", "key", key)
	} else {
		c.logger.Debug("cache miss", "key", key)
	}
	return found, nil
}

// Set stores value as the fresh entry for key
func (c *Cache) Set(ctx context.Context, key string, value any) error {
	if err := c.set(ctx, freshKey(key), value, c.ttl); err != nil {
		c.logger.Error("cache error", "operation", "set", "key", key, "error", err)
		return err
	}
	return nil
}

// GetStale decodes the fallback entry for key into dest
func (c *Cache) GetStale(ctx context.Context, key string, dest any) (bool, error) {
	found, err := c.get(ctx, staleKey(key), dest)
	if err != nil {
		c.logger.Error("cache error", "operation", "get_stale", "key", key, "error", err)
		return false, err
	}
	if !found {
		c.logger.Debug("stale cache miss", "key", key)
	}
	return found, nil
}

// SetStale stores value as the fallback entry for key (24-hour TTL)
func (c *Cache) SetStale(ctx context.Context, key string, value any) error {
	return c.set(ctx, staleKey(key), value, StaleTTL)
}

// Invalidate drops every fresh entry; stale fallbacks are kept
func (c *Cache) Invalidate(ctx context.Context) error {
	return c.deleteMatching(ctx, KeyPrefix+freshSegment+"*")
}

// Clear removes every cached response, stale ones included
func (c *Cache) Clear(ctx context.Context) error {
	return c.deleteMatching(ctx, KeyPrefix+"*")
}

func (c *Cache) get(ctx context.Context, key string, dest any) (bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get cached response: %w", err)
	}

	var cached cachedResponse
	if err := json.Unmarshal(val, &cached); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached response: %w", err)
	}
	if err := json.Unmarshal(cached.Payload, dest); err != nil {
		return false, fmt.Errorf("failed to decode cached payload: %w", err)
	}
	return true, nil
}

func (c *Cache) set(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	data, err := json.Marshal(cachedResponse{Payload: payload, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal cached response: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cached response: %w", err)
	}
	return nil
}

func (c *Cache) deleteMatching(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()

	pipe := c.client.Pipeline()
	count := 0
	for iter.Next(ctx) {
		pipe.Del(ctx, iter.Val())
		count++
		if count >= 100 {
			if _, err := pipe.Exec(ctx); err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}
			pipe = c.client.Pipeline()
			count = 0
		}
	}

	if count > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
	}

	return iter.Err()
}
