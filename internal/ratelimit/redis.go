package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindow trims the sorted set, checks the count and records the
// request in one atomic step.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
if redis.call('ZCARD', key) >= limit then
	return 0
end
redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return 1
`)

// RedisLimiter shares windows between API replicas through a sorted set per
// client. Keys expire on their own, so no sweep is needed.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	now    func() time.Time
	prefix string
}

func NewRedisLimiter(client *redis.Client, limit int, window time.Duration, opts ...Option) *RedisLimiter {
	s := newSettings(opts)
	return &RedisLimiter{
		client: client,
		limit:  limit,
		window: window,
		now:    s.now,
		prefix: s.prefix,
	}
}

func (r *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := r.now()
	member := fmt.Sprintf("%d-%s", now.UnixNano(), uuid.NewString())

	res, err := slidingWindow.Run(ctx, r.client,
		[]string{r.prefix + key},
		now.UnixMilli(), r.window.Milliseconds(), r.limit, member,
	).Int()
	if err != nil {
		return false, fmt.Errorf("rate limit script: %w", err)
	}
	return res == 1, nil
}

var _ Limiter = (*RedisLimiter)(nil)
