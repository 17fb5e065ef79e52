// Package throttle rate-limits outbound queries per nameserver. It is the
// one place the exchange driver consults a shared counter before sending —
// a write-mostly rolling window, never a cache of answers, so it does not
// cross the "no caching/recursion" boundary of spec §1 (see SPEC_FULL.md
// §2.2 for the reasoning).
package throttle

import (
	"context"
	"time"
)

// ThrottleDecision is the result of an Allow check.
type ThrottleDecision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// DistributedThrottle decides whether another query may be sent to
// nameserver within the last window, given a limit on in-window attempts.
// Implementations must be safe for concurrent use.
type DistributedThrottle interface {
	Allow(ctx context.Context, nameserver string, limit int, window time.Duration) (ThrottleDecision, error)
}
