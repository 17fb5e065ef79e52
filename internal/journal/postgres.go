package journal

import (
	"context"
	"database/sql"
	"fmt"
)

// postgresJournal implements QueryJournal using PostgreSQL, adapted from the
// teacher's PostgresRepository (internal/adapters/repository/postgres.go):
// same *sql.DB plumbing and QueryContext/ExecContext-via-context style, here
// writing one row per exchange attempt instead of reading zone records.
type postgresJournal struct {
	db *sql.DB
}

// NewPostgresQueryJournal returns a QueryJournal backed by db. The caller is
// responsible for having created the query_journal table beforehand.
func NewPostgresQueryJournal(db *sql.DB) QueryJournal {
	return &postgresJournal{db: db}
}

func (j *postgresJournal) Record(ctx context.Context, entry QueryJournalEntry) error {
	const stmt = `INSERT INTO query_journal
		(id, qname, qtype, qclass, server, protocol, rcode, rtt_micros, truncated, err, at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := j.db.ExecContext(ctx, stmt,
		entry.ID, entry.QName, entry.QType, entry.QClass, entry.Server,
		entry.Protocol, entry.RCode, entry.RTT.Microseconds(), entry.Truncated,
		entry.Err, entry.At,
	)
	if err != nil {
		return fmt.Errorf("journal: insert: %w", err)
	}
	return nil
}
