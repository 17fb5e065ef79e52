package throttle

import (
	"context"
	"testing"
	"time"
)

func TestLocalThrottleAllowsWithinLimit(t *testing.T) {
	th := NewLocalThrottle()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := th.Allow(ctx, "ns1:53", 3, time.Minute)
		if err != nil {
			t.Fatalf("Allow: %v", err)
		}
		if !d.Allowed {
			t.Errorf("attempt %d: expected allowed", i)
		}
	}

	d, err := th.Allow(ctx, "ns1:53", 3, time.Minute)
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if d.Allowed {
		t.Error("expected 4th attempt to be throttled")
	}
}

func TestLocalThrottleKeyedPerNameserver(t *testing.T) {
	th := NewLocalThrottle()
	ctx := context.Background()

	if d, _ := th.Allow(ctx, "ns1:53", 1, time.Minute); !d.Allowed {
		t.Error("ns1 first attempt should be allowed")
	}
	if d, _ := th.Allow(ctx, "ns2:53", 1, time.Minute); !d.Allowed {
		t.Error("ns2 first attempt should be allowed independently of ns1")
	}
}

func TestLocalThrottleZeroLimitAlwaysAllows(t *testing.T) {
	th := NewLocalThrottle()
	d, err := th.Allow(context.Background(), "ns1:53", 0, 0)
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if !d.Allowed {
		t.Error("expected zero-limit throttle to always allow")
	}
}
