package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tg-support-bot/internal/domain"
	"tg-support-bot/internal/infra/metrics"
)

// RedisPusher команда Redis, нужная очереди.
type RedisPusher interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// RedisEventQueue публикует события поддержки в Redis list.
type RedisEventQueue struct {
	client RedisPusher
	key    string
}

// NewRedisEventQueue создаёт очередь по указанному ключу.
func NewRedisEventQueue(client RedisPusher, key string) *RedisEventQueue {
	return &RedisEventQueue{client: client, key: key}
}

// Publish кладёт событие в начало списка.
func (q *RedisEventQueue) Publish(ctx context.Context, event domain.SupportEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	start := time.Now()
	err = q.client.LPush(ctx, q.key, payload).Err()
	metrics.ObserveNetworkRequest("redis", "lpush", start, err)
	if err != nil {
		return fmt.Errorf("push event: %w", err)
	}
	return nil
}
