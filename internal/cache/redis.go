package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/realtruedate/backend/internal/config"
)

// Allowance values are cached for a short window; any swipe invalidates the
// caller's entry so the accountant recomputes.
const allowanceTTL = 5 * time.Minute

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}

func keyForAllowance(userID uint64) string {
	return fmt.Sprintf("swipes:allowance:%d", userID)
}

// GetAllowance returns (remaining, unlimited, hit). A miss is not an error.
func (c *RedisCache) GetAllowance(ctx context.Context, userID uint64) (int64, bool, bool) {
	val, err := c.Client.Get(ctx, keyForAllowance(userID)).Result()
	if errors.Is(err, redis.Nil) || err != nil {
		return 0, false, false
	}
	if val == "inf" {
		return 0, true, true
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, false
	}
	return n, false, true
}

func (c *RedisCache) SetAllowance(ctx context.Context, userID uint64, remaining int64, unlimited bool) error {
	val := strconv.FormatInt(remaining, 10)
	if unlimited {
		val = "inf"
	}
	return c.Client.Set(ctx, keyForAllowance(userID), val, allowanceTTL).Err()
}

// InvalidateAllowance drops the cached allowance after a swipe is recorded.
func (c *RedisCache) InvalidateAllowance(ctx context.Context, userID uint64) error {
	return c.Client.Del(ctx, keyForAllowance(userID)).Err()
}
