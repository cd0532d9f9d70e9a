package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	eventdomain "mailpilot-backend/internal/event/domain"
	"mailpilot-backend/pkg/fuzzy"
)

// Search bounds for the duplicate scan.
const (
	linkageLookback  = 30 * 24 * time.Hour
	linkageLookahead = 90 * 24 * time.Hour
	fuzzyMaxAge      = 14 * 24 * time.Hour
	linkageMaxHits   = 50
	fuzzyMaxHits     = 30
)

// DuplicateDetector finds an existing calendar entry for a conversation
// before a new one is created. Two signals, checked in order: explicit
// linkage back to the thread, then fuzzy title similarity against recently
// created entries.
type DuplicateDetector struct {
	calendar eventdomain.CalendarProvider
}

func NewDuplicateDetector(calendar eventdomain.CalendarProvider) *DuplicateDetector {
	return &DuplicateDetector{calendar: calendar}
}

// FindDuplicate returns the first calendar entry judged to already cover the
// conversation, or nil when none is found.
func (d *DuplicateDetector) FindDuplicate(ctx context.Context, accessToken, refreshToken, threadID, subject string, now time.Time, onTokenRefresh eventdomain.TokenUpdateFunc) (*eventdomain.CalendarEntry, error) {
	timeMin := now.Add(-linkageLookback)
	timeMax := now.Add(linkageLookahead)

	// Signal one: an entry that points back at this thread.
	linked, err := d.calendar.ListEvents(ctx, accessToken, refreshToken, timeMin, timeMax, threadID, linkageMaxHits, onTokenRefresh)
	if err != nil {
		return nil, fmt.Errorf("linkage search: %w", err)
	}
	deepLink := eventdomain.ThreadDeepLink(threadID)
	for _, entry := range linked {
		if entryLinksThread(entry, threadID, deepLink) {
			return entry, nil
		}
	}

	// Signal two: a recently created entry whose title matches the subject.
	// Very short subjects carry too little signal to compare.
	subject = strings.TrimSpace(subject)
	if len([]rune(subject)) <= 5 {
		return nil, nil
	}
	normalized := fuzzy.NormalizeTitle(subject)
	if len([]rune(normalized)) <= 8 {
		return nil, nil
	}

	tokens := strings.Fields(normalized)
	if len(tokens) > 3 {
		tokens = tokens[:3]
	}
	query := strings.Join(tokens, " ")

	candidates, err := d.calendar.ListEvents(ctx, accessToken, refreshToken, timeMin, timeMax, query, fuzzyMaxHits, onTokenRefresh)
	if err != nil {
		return nil, fmt.Errorf("title search: %w", err)
	}
	for _, entry := range candidates {
		if entry.Created.IsZero() || now.Sub(entry.Created) > fuzzyMaxAge {
			continue
		}
		if fuzzy.TitlesMatch(normalized, fuzzy.NormalizeTitle(entry.Title)) {
			return entry, nil
		}
	}
	return nil, nil
}

func entryLinksThread(entry *eventdomain.CalendarEntry, threadID, deepLink string) bool {
	if entry.SourceURL != "" && (entry.SourceURL == deepLink || strings.Contains(entry.SourceURL, threadID)) {
		return true
	}
	return strings.Contains(entry.Description, threadID) || strings.Contains(entry.Description, deepLink)
}
