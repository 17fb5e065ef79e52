// Package journal records the outcome of every exchange attempt for audit
// and diagnostics — write-only, never consulted to answer a query, so it
// sits outside the "no caching/recursion" boundary of spec §1 the same way
// internal/throttle does (see SPEC_FULL.md §2.2).
package journal

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// QueryJournalEntry is one recorded exchange attempt.
type QueryJournalEntry struct {
	ID        uuid.UUID
	QName     string
	QType     uint16
	QClass    uint16
	Server    string
	Protocol  string // "udp" or "tcp"
	RCode     uint8
	RTT       time.Duration
	Truncated bool
	Err       string
	At        time.Time
}

// QueryJournal records query journal entries. Implementations must be safe
// for concurrent use and must not block the exchange driver on a slow sink
// for longer than the caller's context allows.
type QueryJournal interface {
	Record(ctx context.Context, entry QueryJournalEntry) error
}
