package repository

import (
	"time"

	eventdomain "mailpilot-backend/internal/event/domain"
)

// ProcessingRecordRepository is the per-(user, thread) processing ledger.
type ProcessingRecordRepository interface {
	// GetByThread returns the record for (userID, threadID), nil when absent.
	GetByThread(userID, threadID string) (*eventdomain.ProcessingRecord, error)

	// EnsureRecord creates the record on first sight of a thread, or refreshes
	// the latest-message fields of an existing unprocessed one. Returns the
	// current row either way.
	EnsureRecord(userID, threadID, latestMessageID string, lastMessageAt time.Time) (*eventdomain.ProcessingRecord, error)

	// MarkProcessed finalizes a record with a terminal reason and, for
	// reason "created", the ledger id of the created event.
	MarkProcessed(id, reason string, createdEventID *string) error
}
