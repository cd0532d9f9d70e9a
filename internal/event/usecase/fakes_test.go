package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	eventdomain "mailpilot-backend/internal/event/domain"

	"github.com/google/uuid"
)

// fakeMail serves canned conversations keyed by thread id.
type fakeMail struct {
	threads []eventdomain.ThreadRef
	convs   map[string]*eventdomain.Conversation
	listErr error
}

func (f *fakeMail) ListRecentThreads(_ context.Context, _, _, _ string, max int64, _ eventdomain.TokenUpdateFunc) ([]eventdomain.ThreadRef, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	refs := f.threads
	if int64(len(refs)) > max {
		refs = refs[:max]
	}
	return refs, nil
}

func (f *fakeMail) GetThread(_ context.Context, _, _, threadID string, _ eventdomain.TokenUpdateFunc) (*eventdomain.Conversation, error) {
	conv, ok := f.convs[threadID]
	if !ok {
		return nil, fmt.Errorf("thread %s not found", threadID)
	}
	return conv, nil
}

// fakeCalendar records inserts and serves a fixed entry list for searches.
type fakeCalendar struct {
	timezone string
	entries  []*eventdomain.CalendarEntry
	inserted []*eventdomain.InsertEventRequest
	listErr  error
}

func (f *fakeCalendar) Timezone(_ context.Context, _, _ string, _ eventdomain.TokenUpdateFunc) (string, error) {
	if f.timezone == "" {
		return "UTC", nil
	}
	return f.timezone, nil
}

func (f *fakeCalendar) ListEvents(_ context.Context, _, _ string, timeMin, timeMax time.Time, query string, max int64, _ eventdomain.TokenUpdateFunc) ([]*eventdomain.CalendarEntry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*eventdomain.CalendarEntry
	for _, e := range f.entries {
		if query != "" && !entryMatchesQuery(e, query) {
			continue
		}
		out = append(out, e)
		if int64(len(out)) >= max {
			break
		}
	}
	return out, nil
}

func entryMatchesQuery(e *eventdomain.CalendarEntry, query string) bool {
	q := strings.ToLower(query)
	for _, field := range []string{e.Title, e.Description, e.SourceURL} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	// Free-text search also matches on individual terms.
	for _, term := range strings.Fields(q) {
		if strings.Contains(strings.ToLower(e.Title), term) {
			return true
		}
	}
	return false
}

func (f *fakeCalendar) InsertEvent(_ context.Context, _, _ string, req *eventdomain.InsertEventRequest, _ eventdomain.TokenUpdateFunc) (*eventdomain.CreatedEntryRef, error) {
	f.inserted = append(f.inserted, req)
	id := fmt.Sprintf("cal-%d", len(f.inserted))
	return &eventdomain.CreatedEntryRef{
		EventID:  id,
		HTMLLink: "https://calendar.example.com/" + id,
	}, nil
}

// fakeReasoner returns a canned proposal per thread id, nil meaning abstain.
type fakeReasoner struct {
	proposals map[string]*eventdomain.EventProposal
	err       error
	calls     int
}

func (f *fakeReasoner) ProposeEvent(_ context.Context, req *eventdomain.ProposeRequest) (*eventdomain.EventProposal, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.proposals[req.ThreadID], nil
}

func (f *fakeReasoner) Name() string { return "fake" }

// memRecords is an in-memory ProcessingRecordRepository.
type memRecords struct {
	mu   sync.Mutex
	rows map[string]*eventdomain.ProcessingRecord
}

func newMemRecords() *memRecords {
	return &memRecords{rows: make(map[string]*eventdomain.ProcessingRecord)}
}

func recordKey(userID, threadID string) string { return userID + "/" + threadID }

func (m *memRecords) GetByThread(userID, threadID string) (*eventdomain.ProcessingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rows[recordKey(userID, threadID)]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, nil
}

func (m *memRecords) EnsureRecord(userID, threadID, latestMessageID string, lastMessageAt time.Time) (*eventdomain.ProcessingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := recordKey(userID, threadID)
	if r, ok := m.rows[key]; ok {
		if r.ProcessedAt == nil {
			r.LatestMessageID = latestMessageID
			r.LastMessageAt = lastMessageAt
		}
		copied := *r
		return &copied, nil
	}
	r := &eventdomain.ProcessingRecord{
		ID:              uuid.New().String(),
		UserID:          userID,
		ThreadID:        threadID,
		LatestMessageID: latestMessageID,
		LastMessageAt:   lastMessageAt,
		CreatedAt:       time.Now(),
	}
	m.rows[key] = r
	copied := *r
	return &copied, nil
}

func (m *memRecords) MarkProcessed(id, reason string, createdEventID *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ID == id {
			now := time.Now()
			r.ProcessedAt = &now
			r.ProcessedReason = reason
			r.CreatedEventID = createdEventID
			return nil
		}
	}
	return fmt.Errorf("record %s not found", id)
}

// memCreated is an in-memory CreatedEventRepository.
type memCreated struct {
	mu   sync.Mutex
	rows map[string]*eventdomain.CreatedEvent
}

func newMemCreated() *memCreated {
	return &memCreated{rows: make(map[string]*eventdomain.CreatedEvent)}
}

func (m *memCreated) GetByThread(userID, threadID string) (*eventdomain.CreatedEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rows[recordKey(userID, threadID)]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, nil
}

func (m *memCreated) InsertIfAbsent(event *eventdomain.CreatedEvent) (bool, *eventdomain.CreatedEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := recordKey(event.UserID, event.ThreadID)
	if existing, ok := m.rows[key]; ok {
		copied := *existing
		return false, &copied, nil
	}
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	event.CreatedAt = time.Now()
	copied := *event
	m.rows[key] = &copied
	returned := copied
	return true, &returned, nil
}
