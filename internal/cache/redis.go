// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yamabiko/liveroom/internal/models"
)

// DefaultTTL bounds how stale a cached profile may go after an update that
// bypassed this process.
const DefaultTTL = 5 * time.Minute

const keyPrefix = "liveroom:user:"

// Client caches token -> profile lookups in Redis, fronting the per-request
// authentication query. A nil *Client is valid and disables caching.
type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

// Connect initializes a Redis client from environment variables:
//   - REDIS_ADDR (default "localhost:6379")
//   - REDIS_DB (optional, default 0)
func Connect() (*Client, error) {
	addr := getEnv("REDIS_ADDR", "localhost:6379")
	dbIdx := getEnvInt("REDIS_DB", 0)

	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   dbIdx,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return &Client{rdb: rdb, ttl: DefaultTTL}, nil
}

// GetUser returns the cached profile for the token, or nil on a miss.
func (c *Client) GetUser(ctx context.Context, token string) (*models.User, error) {
	if c == nil {
		return nil, nil
	}
	data, err := c.rdb.Get(ctx, keyPrefix+token).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var u models.User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("decode cached user: %w", err)
	}
	u.Token = token
	return &u, nil
}

// SetUser stores the profile under its token with the client's TTL.
func (c *Client) SetUser(ctx context.Context, u *models.User) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := c.rdb.Set(ctx, keyPrefix+u.Token, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// DeleteUser drops the cached profile for the token.
func (c *Client) DeleteUser(ctx context.Context, token string) error {
	if c == nil {
		return nil
	}
	if err := c.rdb.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
