package throttle

import (
	"context"
	"sync"
	"time"
)

// localThrottle is a token bucket keyed by nameserver, one per process,
// adapted from the teacher's per-IP rate limiter (internal/dns/server's
// rateLimiter): the same refill-then-consume arithmetic, keyed the other
// direction (outbound destination rather than inbound source).
type localThrottle struct {
	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	tokens float64
	last   time.Time
}

// NewLocalThrottle returns a DistributedThrottle backed by in-process state
// only — suitable for a single client instance with no shared counter.
func NewLocalThrottle() DistributedThrottle {
	return &localThrottle{buckets: make(map[string]*bucket)}
}

func (t *localThrottle) Allow(_ context.Context, nameserver string, limit int, window time.Duration) (ThrottleDecision, error) {
	if limit <= 0 || window <= 0 {
		return ThrottleDecision{Allowed: true}, nil
	}
	rate := float64(limit) / window.Seconds()

	t.mu.Lock()
	defer t.mu.Unlock()

	b, ok := t.buckets[nameserver]
	now := time.Now()
	if !ok {
		b = &bucket{tokens: float64(limit), last: now}
		t.buckets[nameserver] = b
	}

	elapsed := now.Sub(b.last).Seconds()
	b.last = now
	b.tokens += elapsed * rate
	if b.tokens > float64(limit) {
		b.tokens = float64(limit)
	}

	if b.tokens >= 1 {
		b.tokens--
		return ThrottleDecision{Allowed: true}, nil
	}

	deficit := 1 - b.tokens
	retryAfter := time.Duration(deficit/rate*1000) * time.Millisecond
	return ThrottleDecision{Allowed: false, RetryAfter: retryAfter}, nil
}

// Cleanup removes buckets that have not been touched in 10 minutes, mirroring
// the teacher's rateLimiter.Cleanup. Callers that run long-lived clients
// should invoke it periodically to bound memory.
func (t *localThrottle) Cleanup() {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	for ns, b := range t.buckets {
		if now.Sub(b.last) > 10*time.Minute {
			delete(t.buckets, ns)
		}
	}
}
