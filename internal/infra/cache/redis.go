package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient команды Redis, нужные кэшу.
type RedisClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisCache реализует domain.Cache через Redis.
type RedisCache struct {
	client RedisClient
	prefix string
}

// NewRedis создаёт кэш. Ключи получают общий префикс.
func NewRedis(client RedisClient, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

// Once выполняет функцию, если ключ ещё не задан. При ошибке fn ключ снимается,
// чтобы повторная доставка могла пройти.
func (c *RedisCache) Once(ctx context.Context, key string, ttl time.Duration, fn func() error) error {
	k := c.prefix + key
	ok, err := c.client.SetNX(ctx, k, "1", ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrSeen
	}
	if err := fn(); err != nil {
		_ = c.client.Del(context.WithoutCancel(ctx), k).Err()
		return err
	}
	return nil
}
