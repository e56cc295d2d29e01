package queue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/shopease/config"
)

// RedisDriver is a durable queue driver.
// Immediate jobs use LPUSH/BRPOP on a list; delayed jobs sit in a sorted set
// scored by Unix time and are promoted by the workers as they poll.
type RedisDriver struct {
	rdb        *redis.Client
	queueKey   string
	delayedKey string
	poll       time.Duration
}

// NewRedisDriver creates a Redis-backed driver. Pass the client pkg/cache
// connected (cache.RDB).
func NewRedisDriver(rdb *redis.Client) *RedisDriver {
	prefix := config.AppName() + ":queue:"
	return &RedisDriver{
		rdb:        rdb,
		queueKey:   prefix + "jobs",
		delayedKey: prefix + "delayed",
		poll:       2 * time.Second,
	}
}

func (d *RedisDriver) Name() string { return "redis" }

// Push adds a job payload to the immediate queue.
func (d *RedisDriver) Push(ctx context.Context, payload []byte) error {
	if err := d.rdb.LPush(ctx, d.queueKey, payload).Err(); err != nil {
		return fmt.Errorf("queue/redis: push: %w", err)
	}
	return nil
}

// PushDelayed schedules payload to become available after delay.
func (d *RedisDriver) PushDelayed(ctx context.Context, payload []byte, delay time.Duration) error {
	err := d.rdb.ZAdd(ctx, d.delayedKey, redis.Z{
		Score:  float64(time.Now().Add(delay).Unix()),
		Member: string(payload),
	}).Err()
	if err != nil {
		return fmt.Errorf("queue/redis: push delayed: %w", err)
	}
	return nil
}

// Pop promotes due delayed jobs, then blocks on BRPOP for one poll interval.
func (d *RedisDriver) Pop(ctx context.Context) ([]byte, error) {
	if err := d.promote(ctx); err != nil && ctx.Err() == nil {
		return nil, err
	}

	result, err := d.rdb.BRPop(ctx, d.poll, d.queueKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("queue/redis: pop: %w", err)
	}
	if len(result) < 2 {
		return nil, nil
	}
	return []byte(result[1]), nil
}

// promote moves due jobs into the main list. ZREM decides ownership so two
// workers never promote the same job twice.
func (d *RedisDriver) promote(ctx context.Context) error {
	due, err := d.rdb.ZRangeByScore(ctx, d.delayedKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(time.Now().Unix(), 10),
	}).Result()
	if err != nil {
		return fmt.Errorf("queue/redis: promote: %w", err)
	}
	for _, job := range due {
		removed, err := d.rdb.ZRem(ctx, d.delayedKey, job).Result()
		if err != nil {
			return fmt.Errorf("queue/redis: promote: %w", err)
		}
		if removed == 0 {
			continue
		}
		if err := d.rdb.LPush(ctx, d.queueKey, job).Err(); err != nil {
			return fmt.Errorf("queue/redis: promote: %w", err)
		}
	}
	return nil
}
