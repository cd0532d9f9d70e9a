package domain

import "time"

// Outcome is the terminal state of one conversation within a run.
type Outcome string

const (
	OutcomeCreated            Outcome = "created"
	OutcomeAlreadyExists      Outcome = "already_exists"
	OutcomeSkippedNotRelevant Outcome = "skipped_not_relevant"
	OutcomeSkippedNoDatetime  Outcome = "skipped_no_datetime"
	OutcomeSkippedOutOfWindow Outcome = "skipped_out_of_window"
	OutcomeError              Outcome = "error"
)

// ThreadOutcome reports what happened to a single conversation.
type ThreadOutcome struct {
	ThreadID  string  `json:"thread_id"`
	Subject   string  `json:"subject"`
	Status    Outcome `json:"status"`
	EventID   string  `json:"event_id,omitempty"`
	EventLink string  `json:"event_link,omitempty"`
	Title     string  `json:"title,omitempty"`
	Error     string  `json:"error,omitempty"`
}

// RunResult is the per-user report for one run.
type RunResult struct {
	UserEmail string          `json:"user_email"`
	Processed int             `json:"processed"`
	Outcomes  []ThreadOutcome `json:"outcomes"`
	Error     string          `json:"error,omitempty"`
}

// Triggers for a processing run.
const (
	TriggerScheduled = "scheduled"
	TriggerManual    = "manual"
)

// RunLog is one line of the persisted run history. Only the most recent
// entries are retained.
type RunLog struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Trigger   string    `json:"trigger"`
	Status    string    `json:"status"` // success | error
	Message   string    `json:"message"`
	Processed int       `json:"processed"`
	CreatedAt time.Time `json:"created_at"`
}
