package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	eventdomain "mailpilot-backend/internal/event/domain"
	"mailpilot-backend/internal/event/repository"
	"mailpilot-backend/pkg/address"
)

// Body text handed to the reasoner is capped at this many characters.
const bodyLimit = 16000

// RunOptions selects the trigger-specific knobs of a processing run.
type RunOptions struct {
	Trigger      string
	ListQuery    string
	ListMax      int64
	MaxProcessed int

	// Lookback selects a trailing window ending now. Zero means the current
	// calendar day in the user's calendar timezone.
	Lookback time.Duration
}

// UserSession is one user's decrypted credentials for the duration of a run.
type UserSession struct {
	UserID         string
	Email          string
	AccessToken    string
	RefreshToken   string
	OnTokenRefresh eventdomain.TokenUpdateFunc
}

// Orchestrator drives the decision pipeline for one user: list recent
// conversations, let the reasoner propose events, weed out duplicates, and
// create calendar entries exactly once per conversation.
type Orchestrator struct {
	records   repository.ProcessingRecordRepository
	created   repository.CreatedEventRepository
	mail      eventdomain.MailProvider
	calendar  eventdomain.CalendarProvider
	reasoner  eventdomain.EventReasoner
	extractor *ContentExtractor
	resolver  *TimeResolver
	detector  *DuplicateDetector

	now func() time.Time
}

func NewOrchestrator(
	records repository.ProcessingRecordRepository,
	created repository.CreatedEventRepository,
	mail eventdomain.MailProvider,
	calendar eventdomain.CalendarProvider,
	reasoner eventdomain.EventReasoner,
) *Orchestrator {
	return &Orchestrator{
		records:   records,
		created:   created,
		mail:      mail,
		calendar:  calendar,
		reasoner:  reasoner,
		extractor: NewContentExtractor(),
		resolver:  NewTimeResolver(),
		detector:  NewDuplicateDetector(calendar),
		now:       time.Now,
	}
}

// ProcessUser runs the pipeline for one user. A failure on one conversation
// is recorded in its outcome and never stops the loop; only list-level
// failures abort the run.
func (o *Orchestrator) ProcessUser(ctx context.Context, sess *UserSession, opts RunOptions) (*eventdomain.RunResult, error) {
	result := &eventdomain.RunResult{UserEmail: sess.Email}
	now := o.now()

	calendarTz, err := o.calendar.Timezone(ctx, sess.AccessToken, sess.RefreshToken, sess.OnTokenRefresh)
	if err != nil {
		log.Printf("[Processor] %s: calendar timezone lookup failed, using UTC: %v", sess.Email, err)
		calendarTz = "UTC"
	}
	windowStart, windowEnd := runWindow(opts, calendarTz, now)

	threads, err := o.mail.ListRecentThreads(ctx, sess.AccessToken, sess.RefreshToken, opts.ListQuery, opts.ListMax, sess.OnTokenRefresh)
	if err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}
	log.Printf("[Processor] %s: %d candidate threads (%s)", sess.Email, len(threads), opts.Trigger)

	for _, ref := range threads {
		if result.Processed >= opts.MaxProcessed {
			break
		}

		outcome, decided := o.processThread(ctx, sess, ref.ID, calendarTz, windowStart, windowEnd, now)
		if outcome != nil {
			result.Outcomes = append(result.Outcomes, *outcome)
		}
		if decided {
			result.Processed++
		}
	}
	return result, nil
}

// processThread takes one conversation to a terminal outcome. The decided
// return reports whether the thread consumed a slot of the run's budget:
// true only when it was fully evaluated this run.
func (o *Orchestrator) processThread(ctx context.Context, sess *UserSession, threadID, calendarTz string, windowStart, windowEnd, now time.Time) (*eventdomain.ThreadOutcome, bool) {
	record, err := o.records.GetByThread(sess.UserID, threadID)
	if err != nil {
		return errOutcome(threadID, "", fmt.Errorf("load record: %w", err)), false
	}
	if record != nil && record.ProcessedAt != nil {
		return nil, false
	}

	conv, err := o.mail.GetThread(ctx, sess.AccessToken, sess.RefreshToken, threadID, sess.OnTokenRefresh)
	if err != nil {
		return errOutcome(threadID, "", fmt.Errorf("fetch thread: %w", err)), false
	}
	latest := conv.Latest()
	if latest == nil {
		return nil, false
	}
	subject := latest.Header("Subject")

	record, err = o.records.EnsureRecord(sess.UserID, threadID, latest.ID, latest.InternalDate)
	if err != nil {
		return errOutcome(threadID, subject, fmt.Errorf("ensure record: %w", err)), false
	}

	// Conversations whose newest message falls outside the run window are
	// left unprocessed so a later run with the right window picks them up.
	if latest.InternalDate.Before(windowStart) || !latest.InternalDate.Before(windowEnd) {
		return &eventdomain.ThreadOutcome{
			ThreadID: threadID,
			Subject:  subject,
			Status:   eventdomain.OutcomeSkippedOutOfWindow,
		}, false
	}

	to := address.ParseAddressList(latest.Header("To"))
	cc := address.ParseAddressList(latest.Header("Cc"))
	candidates := address.BuildCandidateSet(to, cc, sess.Email)

	body := o.extractor.ExtractText(latest)
	if runes := []rune(body); len(runes) > bodyLimit {
		body = string(runes[:bodyLimit])
	}

	proposal, err := o.reasoner.ProposeEvent(ctx, &eventdomain.ProposeRequest{
		Subject:    subject,
		Body:       body,
		Candidates: candidates,
		ThreadID:   threadID,
		Timezone:   calendarTz,
		Now:        now,
	})
	if err != nil {
		return errOutcome(threadID, subject, fmt.Errorf("reasoner: %w", err)), false
	}
	if proposal == nil {
		reason := eventdomain.ReasonNotRelevant
		status := eventdomain.OutcomeSkippedNotRelevant
		if o.resolver.HasDatePhrase(subject+" "+body, now) {
			reason = eventdomain.ReasonNoDatetime
			status = eventdomain.OutcomeSkippedNoDatetime
		}
		if err := o.records.MarkProcessed(record.ID, reason, nil); err != nil {
			return errOutcome(threadID, subject, fmt.Errorf("mark processed: %w", err)), false
		}
		return &eventdomain.ThreadOutcome{ThreadID: threadID, Subject: subject, Status: status}, true
	}

	// The ledger is consulted before any calendar call so a re-run after a
	// partial failure cannot create a second event.
	if existing, err := o.created.GetByThread(sess.UserID, threadID); err != nil {
		return errOutcome(threadID, subject, fmt.Errorf("load created event: %w", err)), false
	} else if existing != nil {
		if err := o.records.MarkProcessed(record.ID, eventdomain.ReasonCreated, &existing.ID); err != nil {
			return errOutcome(threadID, subject, fmt.Errorf("mark processed: %w", err)), false
		}
		return &eventdomain.ThreadOutcome{
			ThreadID:  threadID,
			Subject:   subject,
			Status:    eventdomain.OutcomeAlreadyExists,
			EventID:   existing.CalendarEventID,
			EventLink: existing.Link,
			Title:     existing.Title,
		}, true
	}

	dup, err := o.detector.FindDuplicate(ctx, sess.AccessToken, sess.RefreshToken, threadID, subject, now, sess.OnTokenRefresh)
	if err != nil {
		return errOutcome(threadID, subject, fmt.Errorf("duplicate scan: %w", err)), false
	}
	if dup != nil {
		log.Printf("[Processor] %s: thread %s matches existing event %q", sess.Email, threadID, dup.Title)
		_, row, err := o.created.InsertIfAbsent(&eventdomain.CreatedEvent{
			UserID:          sess.UserID,
			ThreadID:        threadID,
			CalendarEventID: dup.ID,
			Title:           dup.Title,
			Start:           dup.Start,
			End:             dup.End,
			SourceSummary:   subject,
			Link:            dup.HTMLLink,
		})
		if err != nil {
			return errOutcome(threadID, subject, fmt.Errorf("record duplicate: %w", err)), false
		}
		if err := o.records.MarkProcessed(record.ID, eventdomain.ReasonCreated, &row.ID); err != nil {
			return errOutcome(threadID, subject, fmt.Errorf("mark processed: %w", err)), false
		}
		return &eventdomain.ThreadOutcome{
			ThreadID:  threadID,
			Subject:   subject,
			Status:    eventdomain.OutcomeAlreadyExists,
			EventID:   dup.ID,
			EventLink: dup.HTMLLink,
			Title:     dup.Title,
		}, true
	}

	start, end, err := o.resolver.ResolveWindow(proposal, subject+" "+body, calendarTz, now)
	if err != nil {
		return errOutcome(threadID, subject, fmt.Errorf("resolve times: %w", err)), false
	}
	attendees := pickAttendees(proposal.Attendees, candidates)

	deepLink := eventdomain.ThreadDeepLink(threadID)
	ref, err := o.calendar.InsertEvent(ctx, sess.AccessToken, sess.RefreshToken, &eventdomain.InsertEventRequest{
		Title:       proposal.Title,
		Description: buildDescription(proposal.Description, threadID, deepLink),
		Start:       start,
		End:         end,
		Timezone:    resolveLocation(proposal.Timezone, calendarTz).String(),
		Attendees:   attendees,
		SourceTitle: subject,
		SourceURL:   deepLink,
	}, sess.OnTokenRefresh)
	if err != nil {
		return errOutcome(threadID, subject, fmt.Errorf("insert event: %w", err)), false
	}

	inserted, row, err := o.created.InsertIfAbsent(&eventdomain.CreatedEvent{
		UserID:          sess.UserID,
		ThreadID:        threadID,
		CalendarEventID: ref.EventID,
		Title:           proposal.Title,
		Start:           start,
		End:             end,
		Attendees:       joinEmails(attendees),
		SourceSummary:   subject,
		Link:            ref.HTMLLink,
	})
	if err != nil {
		return errOutcome(threadID, subject, fmt.Errorf("record created event: %w", err)), false
	}
	if err := o.records.MarkProcessed(record.ID, eventdomain.ReasonCreated, &row.ID); err != nil {
		return errOutcome(threadID, subject, fmt.Errorf("mark processed: %w", err)), false
	}

	status := eventdomain.OutcomeCreated
	if !inserted {
		// Another run recorded this thread between our ledger check and
		// calendar insert. The ledger row wins; our insert is reported as a
		// duplicate sighting.
		status = eventdomain.OutcomeAlreadyExists
	}
	log.Printf("[Processor] %s: %s %q for thread %s", sess.Email, status, proposal.Title, threadID)
	return &eventdomain.ThreadOutcome{
		ThreadID:  threadID,
		Subject:   subject,
		Status:    status,
		EventID:   row.CalendarEventID,
		EventLink: row.Link,
		Title:     row.Title,
	}, true
}

// runWindow materializes the run's acceptance window. A trailing lookback
// ends at now; otherwise the window is the current calendar day in the
// user's calendar timezone.
func runWindow(opts RunOptions, calendarTz string, now time.Time) (time.Time, time.Time) {
	if opts.Lookback > 0 {
		return now.Add(-opts.Lookback), now
	}
	loc := resolveLocation(calendarTz, "")
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// pickAttendees keeps only proposed attendees that appear in the candidate
// set. When the reasoner proposed none that survive, the full candidate set
// is invited.
func pickAttendees(proposed, candidates []eventdomain.RecipientCandidate) []eventdomain.RecipientCandidate {
	allowed := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		allowed[strings.ToLower(c.Email)] = struct{}{}
	}

	var out []eventdomain.RecipientCandidate
	seen := make(map[string]struct{})
	for _, p := range proposed {
		key := strings.ToLower(p.Email)
		if _, ok := allowed[key]; !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	if len(out) == 0 {
		return candidates
	}
	return out
}

func buildDescription(base, threadID, deepLink string) string {
	var b strings.Builder
	if base != "" {
		b.WriteString(base)
		b.WriteString("\n\n")
	}
	b.WriteString("Gmail Thread ID: ")
	b.WriteString(threadID)
	b.WriteString("\n")
	b.WriteString(deepLink)
	return b.String()
}

func joinEmails(recipients []eventdomain.RecipientCandidate) string {
	emails := make([]string, 0, len(recipients))
	for _, r := range recipients {
		emails = append(emails, r.Email)
	}
	return strings.Join(emails, ",")
}

func errOutcome(threadID, subject string, err error) *eventdomain.ThreadOutcome {
	log.Printf("[Processor] thread %s failed: %v", threadID, err)
	return &eventdomain.ThreadOutcome{
		ThreadID: threadID,
		Subject:  subject,
		Status:   eventdomain.OutcomeError,
		Error:    err.Error(),
	}
}
