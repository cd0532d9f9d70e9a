package domain

import "time"

// CreatedEvent records a calendar entry this system created for a thread.
// At most one row may ever exist per (user, thread); the composite unique
// index enforces the invariant at the schema level. Immutable after insert.
type CreatedEvent struct {
	ID              string    `json:"id" gorm:"primaryKey"`
	UserID          string    `json:"user_id" gorm:"uniqueIndex:idx_created_user_thread;not null"`
	ThreadID        string    `json:"thread_id" gorm:"uniqueIndex:idx_created_user_thread;not null"`
	CalendarEventID string    `json:"calendar_event_id"`
	Title           string    `json:"title"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	Attendees       string    `json:"attendees"` // comma-joined emails
	SourceSummary   string    `json:"source_summary"`
	Link            string    `json:"link"`
	CreatedAt       time.Time `json:"created_at"`
}
