package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionCacheTTL = 10 * time.Minute

// ErrCacheMiss is returned when a session is not in the cache.
var ErrCacheMiss = errors.New("session not cached")

// SessionCache mirrors session documents in Redis so hot lookups skip Mongo.
// A nil *SessionCache is valid and behaves as an always-miss cache.
type SessionCache struct {
	client *redis.Client
}

// NewSessionCache creates a Redis-backed session cache. Returns nil when addr
// is empty, which disables caching.
func NewSessionCache(addr, password string) *SessionCache {
	if addr == "" {
		return nil
	}
	return &SessionCache{
		client: redis.NewClient(&redis.Options{Addr: addr, Password: password}),
	}
}

// Ping verifies Redis connectivity.
func (c *SessionCache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Set stores a session document with a TTL.
func (c *SessionCache) Set(ctx context.Context, session *Session) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, "session:"+session.ID, data, sessionCacheTTL).Err()
}

// Get loads a session document. Returns ErrCacheMiss when absent or when
// caching is disabled.
func (c *SessionCache) Get(ctx context.Context, id string) (*Session, error) {
	if c == nil {
		return nil, ErrCacheMiss
	}
	data, err := c.client.Get(ctx, "session:"+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	var session Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Delete evicts a session document. Safe to call on a miss.
func (c *SessionCache) Delete(ctx context.Context, id string) error {
	if c == nil {
		return nil
	}
	return c.client.Del(ctx, "session:"+id).Err()
}

// Close releases the Redis connection.
func (c *SessionCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
