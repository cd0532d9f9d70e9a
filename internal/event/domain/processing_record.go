package domain

import "time"

// Terminal reasons a conversation can be marked processed with.
const (
	ReasonCreated     = "created"
	ReasonNotRelevant = "not_relevant"
	ReasonNoDatetime  = "no_datetime"
)

// ProcessingRecord is the per-(user, thread) ledger row. Created on first
// sight of a conversation, updated in place, never deleted. Once ProcessedAt
// is set the scheduled path never re-evaluates the thread.
type ProcessingRecord struct {
	ID              string     `json:"id" gorm:"primaryKey"`
	UserID          string     `json:"user_id" gorm:"uniqueIndex:idx_record_user_thread;not null"`
	ThreadID        string     `json:"thread_id" gorm:"uniqueIndex:idx_record_user_thread;not null"`
	LatestMessageID string     `json:"latest_message_id"`
	LastMessageAt   time.Time  `json:"last_message_at"`
	ProcessedAt     *time.Time `json:"processed_at,omitempty"`
	ProcessedReason string     `json:"processed_reason,omitempty"`
	CreatedEventID  *string    `json:"created_event_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
