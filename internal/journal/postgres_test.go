package journal

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

func TestPostgresJournalRecord(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %s", err)
	}
	defer db.Close()

	j := NewPostgresQueryJournal(db)

	entry := QueryJournalEntry{
		ID:       uuid.New(),
		QName:    "www.example.com.",
		QType:    1,
		QClass:   1,
		Server:   "8.8.8.8:53",
		Protocol: "udp",
		RCode:    0,
		RTT:      12 * time.Millisecond,
		At:       time.Unix(0, 0),
	}

	mock.ExpectExec(`INSERT INTO query_journal`).
		WithArgs(entry.ID, entry.QName, entry.QType, entry.QClass, entry.Server,
			entry.Protocol, entry.RCode, entry.RTT.Microseconds(), entry.Truncated,
			entry.Err, entry.At).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := j.Record(context.Background(), entry); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestNoopJournalDiscards(t *testing.T) {
	j := NewNoopQueryJournal()
	if err := j.Record(context.Background(), QueryJournalEntry{}); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}
