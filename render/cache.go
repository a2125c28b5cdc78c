package render

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Luismorlan/feedcast/model"
	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

var ErrCacheMiss = errors.New("payload not cached")

// PayloadCache holds rendered payloads so that every consumer of one dispatch
// reads the same rendering.
type PayloadCache interface {
	Put(ctx context.Context, statusID int64, payload []byte) error
	Get(ctx context.Context, statusID int64) ([]byte, error)
}

func PayloadKey(statusID int64) string {
	return fmt.Sprintf("status:payload:%d", statusID)
}

// Warm renders status once and stores the payload in cache.
func Warm(ctx context.Context, r Renderer, cache PayloadCache, status *model.Status) ([]byte, error) {
	payload, err := r.Render(status)
	if err != nil {
		return nil, err
	}
	if err := cache.Put(ctx, status.ID, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

type RedisPayloadCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisPayloadCache(client *redis.Client, ttl time.Duration) *RedisPayloadCache {
	return &RedisPayloadCache{client: client, ttl: ttl}
}

func (c *RedisPayloadCache) Put(ctx context.Context, statusID int64, payload []byte) error {
	err := c.client.Set(ctx, PayloadKey(statusID), payload, c.ttl).Err()
	return errors.Wrapf(err, "cache payload of status %d", statusID)
}

func (c *RedisPayloadCache) Get(ctx context.Context, statusID int64) ([]byte, error) {
	b, err := c.client.Get(ctx, PayloadKey(statusID)).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	return b, errors.Wrapf(err, "read cached payload of status %d", statusID)
}

// MemoryPayloadCache never expires entries.
type MemoryPayloadCache struct {
	mu       sync.RWMutex
	payloads map[int64][]byte
	puts     int
}

func NewMemoryPayloadCache() *MemoryPayloadCache {
	return &MemoryPayloadCache{payloads: make(map[int64][]byte)}
}

func (c *MemoryPayloadCache) Put(ctx context.Context, statusID int64, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payloads[statusID] = payload
	c.puts++
	return nil
}

func (c *MemoryPayloadCache) Get(ctx context.Context, statusID int64) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.payloads[statusID]
	if !ok {
		return nil, ErrCacheMiss
	}
	return b, nil
}

// Puts counts Put calls.
func (c *MemoryPayloadCache) Puts() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.puts
}
