package domain

import (
	"context"
	"time"

	"golang.org/x/oauth2"
)

// TokenUpdateFunc is invoked when a provider refreshes the user's OAuth token,
// so the caller can persist the new credentials.
type TokenUpdateFunc func(token *oauth2.Token) error

// MailProvider lists and fetches conversations from the user's mailbox.
type MailProvider interface {
	// ListRecentThreads returns refs for threads matching the mailbox query,
	// newest first, at most max.
	ListRecentThreads(ctx context.Context, accessToken, refreshToken, query string, max int64, onTokenRefresh TokenUpdateFunc) ([]ThreadRef, error)

	// GetThread fetches a full conversation with decoded message bodies.
	GetThread(ctx context.Context, accessToken, refreshToken, threadID string, onTokenRefresh TokenUpdateFunc) (*Conversation, error)
}

// CalendarProvider queries and mutates the user's primary calendar.
type CalendarProvider interface {
	// Timezone returns the user's calendar timezone setting, "UTC" on failure.
	Timezone(ctx context.Context, accessToken, refreshToken string, onTokenRefresh TokenUpdateFunc) (string, error)

	// ListEvents searches entries between timeMin and timeMax filtered by the
	// free-text query, at most max results.
	ListEvents(ctx context.Context, accessToken, refreshToken string, timeMin, timeMax time.Time, query string, max int64, onTokenRefresh TokenUpdateFunc) ([]*CalendarEntry, error)

	// InsertEvent creates an entry on the primary calendar and notifies
	// attendees.
	InsertEvent(ctx context.Context, accessToken, refreshToken string, req *InsertEventRequest, onTokenRefresh TokenUpdateFunc) (*CreatedEntryRef, error)
}
