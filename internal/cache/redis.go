package cache

import (
	"context"
	"time"

	"github.com/Domenick1991/tourdesk/config"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client *redis.Client
}

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// MarkEventHandled records eventID for ttl. It returns false when the event
// was already marked, so redelivered Kafka messages are processed once.
func (c *RedisCache) MarkEventHandled(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, handledEventKey(eventID), "1", ttl).Result()
}

// ForgetEvent drops the mark so an event whose notification failed is not
// recorded as handled. It is only sent again if the topic is replayed.
func (c *RedisCache) ForgetEvent(ctx context.Context, eventID string) error {
	return c.client.Del(ctx, handledEventKey(eventID)).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func handledEventKey(eventID string) string {
	return "notify:event:" + eventID
}
