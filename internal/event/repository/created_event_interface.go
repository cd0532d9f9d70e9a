package repository

import (
	eventdomain "mailpilot-backend/internal/event/domain"
)

// CreatedEventRepository is the at-most-one-per-(user, thread) ledger of
// calendar entries this system created.
type CreatedEventRepository interface {
	// GetByThread returns the created event for (userID, threadID), nil when
	// absent.
	GetByThread(userID, threadID string) (*eventdomain.CreatedEvent, error)

	// InsertIfAbsent atomically inserts the event unless a row for the same
	// (user, thread) already exists. Returns the row that is in the database
	// after the call and whether this call inserted it.
	InsertIfAbsent(event *eventdomain.CreatedEvent) (inserted bool, current *eventdomain.CreatedEvent, err error)
}
