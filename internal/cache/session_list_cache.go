// Package cache stores rendered session lists per user. A write that changes
// what a list would show invalidates every cached query of that user.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

type SessionListCache interface {
	Get(ctx context.Context, userID, query string) ([]byte, bool, error)
	Set(ctx context.Context, userID, query string, payload []byte) error
	Invalidate(ctx context.Context, userID string) error
}

func listKey(userID string) string {
	return fmt.Sprintf("sessions:list:%s", userID)
}

// RedisSessionListCache keeps one hash per user, one field per query, so
// invalidation is a single DEL.
type RedisSessionListCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSessionListCache(rdb *redis.Client, ttl time.Duration) *RedisSessionListCache {
	return &RedisSessionListCache{rdb: rdb, ttl: ttl}
}

func (c *RedisSessionListCache) Get(ctx context.Context, userID, query string) ([]byte, bool, error) {
	val, err := c.rdb.HGet(ctx, listKey(userID), query).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (c *RedisSessionListCache) Set(ctx context.Context, userID, query string, payload []byte) error {
	key := listKey(userID)
	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, key, query, payload)
	pipe.Expire(ctx, key, c.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (c *RedisSessionListCache) Invalidate(ctx context.Context, userID string) error {
	return c.rdb.Del(ctx, listKey(userID)).Err()
}

// LocalSessionListCache is the single-instance fallback when Redis is not configured.
type LocalSessionListCache struct {
	cache *gocache.Cache
	mu    sync.Mutex
}

func NewLocalSessionListCache(ttl time.Duration) *LocalSessionListCache {
	return &LocalSessionListCache{cache: gocache.New(ttl, 2*ttl)}
}

func (c *LocalSessionListCache) Get(_ context.Context, userID, query string) ([]byte, bool, error) {
	if x, found := c.cache.Get(listKey(userID) + "|" + query); found {
		return x.([]byte), true, nil
	}
	return nil, false, nil
}

func (c *LocalSessionListCache) Set(_ context.Context, userID, query string, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.SetDefault(listKey(userID)+"|"+query, payload)
	return nil
}

func (c *LocalSessionListCache) Invalidate(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := listKey(userID) + "|"
	for k := range c.cache.Items() {
		if strings.HasPrefix(k, prefix) {
			c.cache.Delete(k)
		}
	}
	return nil
}
