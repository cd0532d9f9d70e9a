package usecase

import (
	"fmt"
	"strings"
	"time"

	eventdomain "mailpilot-backend/internal/event/domain"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// How much body text the natural-language date pass reads.
const dateScanLimit = 4000

// startLayouts is the acceptance ladder for proposal timestamps. The first
// layout is the canonical form the reasoner is asked for.
var startLayouts = []string{
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// TimeResolver turns a proposal's timestamps into a concrete [start, end)
// window in the user's timezone. It never guesses a start: an unparseable
// start is an error, not a default.
type TimeResolver struct {
	parser *when.Parser
}

func NewTimeResolver() *TimeResolver {
	parser := when.New(nil)
	parser.Add(en.All...)
	parser.Add(common.All...)
	return &TimeResolver{parser: parser}
}

// ResolveWindow resolves the event window for a proposal. bodyText is the
// extracted conversation text, used only to recover a missing end time.
// calendarTz is the fallback zone when the proposal carries none.
func (r *TimeResolver) ResolveWindow(proposal *eventdomain.EventProposal, bodyText, calendarTz string, now time.Time) (time.Time, time.Time, error) {
	loc := resolveLocation(proposal.Timezone, calendarTz)

	start, err := parseLocal(proposal.StartISO, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("unparseable start time %q: %w", proposal.StartISO, err)
	}

	end, ok := r.resolveEnd(proposal, bodyText, start, now, loc)
	if !ok {
		end = addCivil(start, defaultDuration(proposal.Title+" "+bodyText), loc)
	}
	if !end.After(start) {
		end = addCivil(start, 60*time.Minute, loc)
	}
	return start, end, nil
}

// resolveEnd tries the proposal's explicit end, then a natural-language scan
// of the body. An explicit end is returned even when it precedes start, so
// the caller's ordering repair applies to it. A scanned time counts only
// when it lands after start and follows a range cue such as "until": the
// scan usually re-finds the start phrase itself, and a later time mentioned
// in passing is not the event's end.
func (r *TimeResolver) resolveEnd(proposal *eventdomain.EventProposal, bodyText string, start, now time.Time, loc *time.Location) (time.Time, bool) {
	if proposal.EndISO != "" {
		if end, err := parseLocal(proposal.EndISO, loc); err == nil {
			return end, true
		}
	}

	text := bodyText
	if runes := []rune(text); len(runes) > dateScanLimit {
		text = string(runes[:dateScanLimit])
	}
	if result, err := r.parser.Parse(text, now.In(loc)); err == nil && result != nil {
		if result.Time.After(start) && followsRangeCue(text, result.Index) {
			return result.Time, true
		}
	}
	return time.Time{}, false
}

// followsRangeCue reports whether the text immediately before index ends
// with a word announcing an end time.
func followsRangeCue(text string, idx int) bool {
	if idx <= 0 || idx > len(text) {
		return false
	}
	prefix := strings.ToLower(strings.TrimRight(text[:idx], " \t"))
	if strings.HasSuffix(prefix, "-") {
		return true
	}
	for _, cue := range []string{"until", "till", "through", "to", "ends", "ending"} {
		if prefix == cue || strings.HasSuffix(prefix, " "+cue) {
			return true
		}
	}
	return false
}

// HasDatePhrase reports whether the text contains a recognizable date or
// time expression. Used to classify reasoner abstentions.
func (r *TimeResolver) HasDatePhrase(text string, now time.Time) bool {
	if runes := []rune(text); len(runes) > dateScanLimit {
		text = string(runes[:dateScanLimit])
	}
	result, err := r.parser.Parse(text, now)
	return err == nil && result != nil
}

// defaultDuration picks a default length from telltale words in the title
// and conversation text.
func defaultDuration(text string) time.Duration {
	t := strings.ToLower(text)
	switch {
	case containsAny(t, "lunch", "dinner", "meal"):
		return 90 * time.Minute
	case containsAny(t, "call", "phone", "quick"):
		return 30 * time.Minute
	case containsAny(t, "workshop", "training", "conference"):
		return 120 * time.Minute
	default:
		return 60 * time.Minute
	}
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// parseLocal tries each accepted layout, anchoring zone-less layouts in loc.
func parseLocal(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	var lastErr error
	for _, layout := range startLayouts {
		t, err := time.ParseInLocation(layout, value, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// addCivil adds a duration in civil time: the wall-clock components move by
// the duration's minutes, so an event spanning a DST transition keeps its
// advertised length on the clock.
func addCivil(t time.Time, d time.Duration, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute()+int(d.Minutes()), t.Second(), 0, loc)
}

func resolveLocation(preferred, fallback string) *time.Location {
	if preferred != "" {
		if loc, err := time.LoadLocation(preferred); err == nil {
			return loc
		}
	}
	if fallback != "" {
		if loc, err := time.LoadLocation(fallback); err == nil {
			return loc
		}
	}
	return time.UTC
}
