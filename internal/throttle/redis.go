package throttle

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces throttle counters the same way the teacher's
// RedisCache namespaces cache entries under "dns:".
const keyPrefix = "rdns:throttle:"

// redisThrottle shares a rolling window counter across every client sharing
// the same Redis instance, adapted from the teacher's RedisCache
// (internal/dns/server/redis.go): same *redis.Client plumbing, INCR+PEXPIRE
// in place of GET/SET, so one fleet of resolvers backs off a misbehaving
// nameserver together instead of each discovering the limit independently.
type redisThrottle struct {
	client *redis.Client
}

// NewRedisThrottle returns a DistributedThrottle backed by client.
func NewRedisThrottle(client *redis.Client) DistributedThrottle {
	return &redisThrottle{client: client}
}

func (t *redisThrottle) Allow(ctx context.Context, nameserver string, limit int, window time.Duration) (ThrottleDecision, error) {
	if limit <= 0 || window <= 0 {
		return ThrottleDecision{Allowed: true}, nil
	}
	key := keyPrefix + nameserver

	count, err := t.client.Incr(ctx, key).Result()
	if err != nil {
		return ThrottleDecision{}, fmt.Errorf("throttle: redis incr: %w", err)
	}
	if count == 1 {
		if err := t.client.PExpire(ctx, key, window).Err(); err != nil {
			return ThrottleDecision{}, fmt.Errorf("throttle: redis pexpire: %w", err)
		}
	}

	if count <= int64(limit) {
		return ThrottleDecision{Allowed: true}, nil
	}

	ttl, err := t.client.PTTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		ttl = window
	}
	return ThrottleDecision{Allowed: false, RetryAfter: ttl}, nil
}
