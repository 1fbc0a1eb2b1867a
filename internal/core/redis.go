// AngelaMos | 2026
// redis.go

package core

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/templates/shop-backend/internal/config"
)

type Redis struct {
	Client *redis.Client
}

func NewRedis(ctx context.Context, cfg config.RedisConfig) (*Redis, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.PoolTimeout = 30 * time.Second
	opts.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Redis{Client: client}, nil
}

func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

func (r *Redis) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := r.Client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	return nil
}

func (r *Redis) PoolStats() *redis.PoolStats {
	return r.Client.PoolStats()
}

type Cooldown struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewCooldown(client redis.Cmdable, prefix string, ttl time.Duration) *Cooldown {
	return &Cooldown{client: client, prefix: prefix, ttl: ttl}
}

// Acquire claims the cooldown slot for key. When the slot is already held
// it returns false along with the time left before it frees up.
func (c *Cooldown) Acquire(
	ctx context.Context,
	key string,
) (bool, time.Duration, error) {
	if c.ttl <= 0 {
		return true, 0, nil
	}

	fullKey := c.prefix + HashIdentifier(key)

	ok, err := c.client.SetNX(ctx, fullKey, 1, c.ttl).Result()
	if err != nil {
		return false, 0, fmt.Errorf("acquire cooldown: %w", err)
	}
	if ok {
		return true, 0, nil
	}

	remaining, err := c.client.PTTL(ctx, fullKey).Result()
	if err != nil {
		return false, 0, fmt.Errorf("read cooldown ttl: %w", err)
	}
	if remaining < 0 {
		remaining = c.ttl
	}

	return false, remaining, nil
}

func (c *Cooldown) Release(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefix+HashIdentifier(key)).Err(); err != nil {
		return fmt.Errorf("release cooldown: %w", err)
	}
	return nil
}
