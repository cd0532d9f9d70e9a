package domain

import "time"

// RecipientCandidate is a possible attendee parsed from To/Cc headers,
// deduplicated by lowercase email with the processing user excluded.
type RecipientCandidate struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// ProposalSource identifies the conversation a proposal came from.
type ProposalSource struct {
	ThreadID string `json:"thread_id"`
	Subject  string `json:"subject"`
}

// EventProposal is the reasoner's structured description of a candidate
// calendar event. Transient, never persisted as-is.
type EventProposal struct {
	Title       string               `json:"title"`
	Description string               `json:"description,omitempty"`
	StartISO    string               `json:"start_iso"`
	EndISO      string               `json:"end_iso,omitempty"`
	Timezone    string               `json:"timezone"`
	Attendees   []RecipientCandidate `json:"attendees"`
	Source      ProposalSource       `json:"source"`
}

// CalendarEntry is a calendar event as seen by duplicate detection.
type CalendarEntry struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Created     time.Time `json:"created"`
	SourceURL   string    `json:"source_url,omitempty"`
	HTMLLink    string    `json:"html_link,omitempty"`
}

// CreatedEntryRef is the provider's handle to a freshly inserted event.
type CreatedEntryRef struct {
	EventID  string `json:"event_id"`
	HTMLLink string `json:"html_link"`
}

// InsertEventRequest is the creation payload handed to the calendar provider.
type InsertEventRequest struct {
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Start       time.Time            `json:"start"`
	End         time.Time            `json:"end"`
	Timezone    string               `json:"timezone"`
	Attendees   []RecipientCandidate `json:"attendees"`
	SourceTitle string               `json:"source_title"`
	SourceURL   string               `json:"source_url"`
}

// ThreadDeepLink is the canonical Gmail link for a thread. Embedded in created
// event descriptions so later runs can recognize them by linkage alone.
func ThreadDeepLink(threadID string) string {
	return "https://mail.google.com/mail/u/0/#inbox/" + threadID
}
