// Package cache keeps the externally served site feed in Redis and evicts it
// after placements change.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "linkmarket"

func SiteFeedKey(siteID int) string {
	return fmt.Sprintf("%s:site:%d:feed", keyPrefix, siteID)
}

func sitePattern(siteID int) string {
	return fmt.Sprintf("%s:site:%d:*", keyPrefix, siteID)
}

type Invalidator interface {
	InvalidateSite(ctx context.Context, siteID int)
}

// NewRedisClient connects and pings. A nil client with an error means the
// caller should run without a cache.
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

type Redis struct {
	rdb     *redis.Client
	ttl     time.Duration
	timeout time.Duration
}

func NewRedis(rdb *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Redis{rdb: rdb, ttl: ttl, timeout: 2 * time.Second}
}

// InvalidateSite evicts every key of the site in the background. Errors are
// logged only: a stale feed lives at most one TTL.
func (c *Redis) InvalidateSite(ctx context.Context, siteID int) {
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		if err := c.Evict(ctx, siteID); err != nil {
			zap.L().Warn("cache invalidation failed", zap.Int("site_id", siteID), zap.Error(err))
		}
	}()
}

func (c *Redis) Evict(ctx context.Context, siteID int) error {
	keys := []string{SiteFeedKey(siteID)}
	iter := c.rdb.Scan(ctx, 0, sitePattern(siteID), 100).Iterator()
	for iter.Next(ctx) {
		if iter.Val() != keys[0] {
			keys = append(keys, iter.Val())
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan site keys: %w", err)
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// Feed returns the cached feed body or builds it with load and stores it.
// Redis failures fall through to load.
func (c *Redis) Feed(ctx context.Context, siteID int, load func(ctx context.Context) ([]byte, error)) ([]byte, bool, error) {
	key := SiteFeedKey(siteID)
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		return raw, true, nil
	}
	if !errors.Is(err, redis.Nil) {
		zap.L().Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	body, err := load(ctx)
	if err != nil {
		return nil, false, err
	}
	if err := c.rdb.SetEx(ctx, key, body, c.ttl).Err(); err != nil {
		zap.L().Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return body, false, nil
}

// Nop is used when Redis is not configured.
type Nop struct{}

func (Nop) InvalidateSite(context.Context, int) {}

func (Nop) Feed(ctx context.Context, _ int, load func(ctx context.Context) ([]byte, error)) ([]byte, bool, error) {
	body, err := load(ctx)
	return body, false, err
}
