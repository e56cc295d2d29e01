// Package cache is a small key/value cache with a Redis driver and an
// in-process memory driver. Values are stored as JSON.
//
//	var page catalogPage
//	if cache.Get(ctx, key, &page) {
//	    return page, nil
//	}
//	...
//	cache.Set(ctx, key, page, 5*time.Minute)
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/shopease/config"
	"github.com/shashiranjanraj/shopease/pkg/metrics"
)

// ErrMiss is returned by Store.Get when the key does not exist or has expired.
var ErrMiss = errors.New("cache: miss")

// Store is the driver contract.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Incr(ctx context.Context, key string) (int64, error)
	Ping(ctx context.Context) error
	Name() string
}

var (
	// RDB is the shared Redis client, nil when Redis is not in use. The Redis
	// queue driver reuses it.
	RDB *redis.Client

	mu    sync.RWMutex
	store Store = NewMemoryStore()
)

// Connect initialises the configured driver. For "redis" it verifies the
// connection with a ping and returns an error so the caller can fall back.
func Connect() error {
	if config.CacheDriver() != "redis" {
		Use(NewMemoryStore())
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr(),
		Password: config.RedisPassword(),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close() //nolint:errcheck
		return fmt.Errorf("cache: redis ping: %w", err)
	}

	RDB = client
	Use(NewRedisStore(client))
	return nil
}

// Use swaps the active store.
func Use(s Store) {
	mu.Lock()
	store = s
	mu.Unlock()
}

// Current returns the active store.
func Current() Store {
	mu.RLock()
	defer mu.RUnlock()
	return store
}

// Close releases the Redis client if one is open.
func Close() error {
	if RDB == nil {
		return nil
	}
	err := RDB.Close()
	RDB = nil
	return err
}

// Get unmarshals the cached value into dest. It returns true on a hit.
func Get(ctx context.Context, key string, dest interface{}) bool {
	s := Current()
	raw, err := s.Get(ctx, key)
	if err != nil {
		metrics.CacheMisses.WithLabelValues(s.Name()).Inc()
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		metrics.CacheMisses.WithLabelValues(s.Name()).Inc()
		return false
	}
	metrics.CacheHits.WithLabelValues(s.Name()).Inc()
	return true
}

// Set stores value under key for ttl. A ttl of 0 keeps the key forever.
func Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: marshal %s: %w", key, err)
	}
	return Current().Set(ctx, key, data, ttl)
}

// Del removes one or more keys.
func Del(ctx context.Context, keys ...string) error {
	return Current().Del(ctx, keys...)
}

// Incr atomically increments an integer counter and returns the new value.
func Incr(ctx context.Context, key string) (int64, error) {
	return Current().Incr(ctx, key)
}

// Remember returns the cached value for key or computes, stores and returns
// it. A failing fn is not cached.
func Remember[T any](ctx context.Context, key string, ttl time.Duration, fn func() (T, error)) (T, error) {
	var out T
	if Get(ctx, key, &out) {
		return out, nil
	}
	out, err := fn()
	if err != nil {
		return out, err
	}
	_ = Set(ctx, key, out, ttl)
	return out, nil
}

// ─── Redis ────────────────────────────────────────────────────────────────────

// RedisStore is the Redis driver.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStore wraps client. Keys are namespaced with APP_NAME.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{rdb: client, prefix: config.AppName() + ":"}
}

func (s *RedisStore) Name() string { return "redis" }

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return b, err
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.rdb.Set(ctx, s.prefix+key, value, ttl).Err()
}

func (s *RedisStore) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.prefix + k
	}
	return s.rdb.Del(ctx, full...).Err()
}

func (s *RedisStore) Incr(ctx context.Context, key string) (int64, error) {
	return s.rdb.Incr(ctx, s.prefix+key).Result()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// ─── Memory ───────────────────────────────────────────────────────────────────

type memItem struct {
	value     []byte
	expiresAt time.Time // zero = never
}

func (i memItem) expired(now time.Time) bool {
	return !i.expiresAt.IsZero() && now.After(i.expiresAt)
}

// MemoryStore is a process-local driver. Expired keys are dropped lazily.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]memItem
}

// NewMemoryStore returns an empty memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: map[string]memItem{}}
}

func (s *MemoryStore) Name() string { return "memory" }

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[key]
	if !ok || it.expired(time.Now()) {
		delete(s.items, key)
		return nil, ErrMiss
	}
	return it.value, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	it := memItem{value: append([]byte(nil), value...)}
	if ttl > 0 {
		it.expiresAt = time.Now().Add(ttl)
	}
	s.mu.Lock()
	s.items[key] = it
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	for _, k := range keys {
		delete(s.items, k)
	}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Incr(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	it, ok := s.items[key]
	if ok && !it.expired(time.Now()) {
		var err error
		if n, err = strconv.ParseInt(string(it.value), 10, 64); err != nil {
			return 0, fmt.Errorf("cache: incr %s: value is not an integer", key)
		}
	} else {
		it = memItem{}
	}
	n++
	it.value = []byte(strconv.FormatInt(n, 10))
	s.items[key] = it
	return n, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }
