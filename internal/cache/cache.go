// Package cache keeps aggregate report results between stock changes.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

const keyPrefix = "inventory:reports:"

type ReportCache interface {
	// Get decodes the cached value into dest and reports whether it was found.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	// Invalidate drops every cached report.
	Invalidate(ctx context.Context) error
}

type redisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) ReportCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &redisCache{rdb: rdb, ttl: ttl}
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, err := c.rdb.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, keyPrefix+key, data, c.ttl).Err()
}

func (c *redisCache) Invalidate(ctx context.Context) error {
	var keys []string
	iter := c.rdb.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

type nopCache struct{}

// NewNop returns a cache that never hits.
func NewNop() ReportCache { return nopCache{} }

func (nopCache) Get(context.Context, string, interface{}) (bool, error) { return false, nil }
func (nopCache) Set(context.Context, string, interface{}) error         { return nil }
func (nopCache) Invalidate(context.Context) error                       { return nil }

// Remember returns the cached value for key, or calls load and caches its
// result. Cache failures are logged and never fail the read.
func Remember[T any](ctx context.Context, c ReportCache, key string, load func() (T, error)) (T, error) {
	var cached T
	hit, err := c.Get(ctx, key, &cached)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Report cache read failed")
	}
	if hit {
		return cached, nil
	}

	value, err := load()
	if err != nil {
		return value, err
	}
	if err := c.Set(ctx, key, value); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Report cache write failed")
	}
	return value, nil
}

// Memory is an in-process ReportCache used in tests.
type Memory struct {
	mu      sync.Mutex
	entries map[string][]byte
	hits    int
}

func NewMemory() *Memory {
	return &Memory{entries: map[string][]byte{}}
}

func (m *Memory) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.entries[key]
	if !ok {
		return false, nil
	}
	m.hits++
	return true, json.Unmarshal(data, dest)
}

func (m *Memory) Set(_ context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.entries[key] = data
	m.mu.Unlock()
	return nil
}

func (m *Memory) Invalidate(context.Context) error {
	m.mu.Lock()
	m.entries = map[string][]byte{}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Hits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits
}
