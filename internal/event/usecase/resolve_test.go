package usecase

import (
	"testing"
	"time"

	eventdomain "mailpilot-backend/internal/event/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var resolveNow = time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)

func TestResolveWindowExplicitEnd(t *testing.T) {
	proposal := &eventdomain.EventProposal{
		Title:    "Design review",
		StartISO: "2026-08-21T14:00:00",
		EndISO:   "2026-08-21T15:30:00",
		Timezone: "UTC",
	}

	start, end, err := NewTimeResolver().ResolveWindow(proposal, "", "UTC", resolveNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 21, 14, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 8, 21, 15, 30, 0, 0, time.UTC), end)
}

func TestResolveWindowDefaultDuration(t *testing.T) {
	proposal := &eventdomain.EventProposal{
		Title:    "Design review",
		StartISO: "2026-08-21T14:00:00",
		Timezone: "UTC",
	}

	start, end, err := NewTimeResolver().ResolveWindow(proposal, "please bring the latest mockups", "UTC", resolveNow)
	require.NoError(t, err)
	assert.Equal(t, 60*time.Minute, end.Sub(start))
}

func TestResolveWindowKeywordDurations(t *testing.T) {
	tests := []struct {
		title string
		want  time.Duration
	}{
		{"Lunch with the team", 90 * time.Minute},
		{"Quick call about hiring", 30 * time.Minute},
		{"Onboarding workshop", 120 * time.Minute},
		{"Design review", 60 * time.Minute},
	}

	resolver := NewTimeResolver()
	for _, tt := range tests {
		proposal := &eventdomain.EventProposal{
			Title:    tt.title,
			StartISO: "2026-08-21T12:00:00",
			Timezone: "UTC",
		}
		start, end, err := resolver.ResolveWindow(proposal, "agenda attached", "UTC", resolveNow)
		require.NoError(t, err)
		assert.Equal(t, tt.want, end.Sub(start), "title %q", tt.title)
	}
}

func TestResolveWindowRepairsInvertedEnd(t *testing.T) {
	proposal := &eventdomain.EventProposal{
		Title:    "Design review",
		StartISO: "2026-08-21T14:00:00",
		EndISO:   "2026-08-21T13:00:00",
		Timezone: "UTC",
	}

	start, end, err := NewTimeResolver().ResolveWindow(proposal, "agenda attached", "UTC", resolveNow)
	require.NoError(t, err)
	assert.True(t, end.After(start))
	assert.Equal(t, 60*time.Minute, end.Sub(start))

	// The forced one-hour repair wins over the keyword default.
	proposal.Title = "Lunch with the team"
	start, end, err = NewTimeResolver().ResolveWindow(proposal, "agenda attached", "UTC", resolveNow)
	require.NoError(t, err)
	assert.Equal(t, 60*time.Minute, end.Sub(start))
}

func TestResolveWindowEndFromRangeCue(t *testing.T) {
	proposal := &eventdomain.EventProposal{
		Title:    "Team offsite",
		StartISO: "2026-08-21T13:00:00",
		Timezone: "UTC",
	}

	start, end, err := NewTimeResolver().ResolveWindow(proposal, "runs until tomorrow at 3pm", "UTC", resolveNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 21, 13, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 8, 21, 15, 0, 0, 0, time.UTC), end)
}

func TestResolveWindowIgnoresIncidentalTimes(t *testing.T) {
	// A later time mentioned in passing carries no range cue and must not
	// become the end; the keyword duration applies instead.
	proposal := &eventdomain.EventProposal{
		Title:    "Dinner downtown",
		StartISO: "2026-08-21T19:00:00",
		Timezone: "UTC",
	}

	start, end, err := NewTimeResolver().ResolveWindow(proposal, "my flight lands tomorrow at 11pm", "UTC", resolveNow)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, end.Sub(start))
}

func TestResolveWindowCivilAdditionAcrossDST(t *testing.T) {
	// 2026-03-08 02:00 does not exist in America/New_York (spring forward).
	// Adding 90 wall-clock minutes to 01:30 must land on 03:00 local, which
	// is only 30 absolute minutes later.
	proposal := &eventdomain.EventProposal{
		Title:    "Lunch run",
		StartISO: "2026-03-08T01:30:00",
		Timezone: "America/New_York",
	}

	start, end, err := NewTimeResolver().ResolveWindow(proposal, "see you there", "America/New_York", resolveNow)
	require.NoError(t, err)
	assert.Equal(t, 1, start.Hour())
	assert.Equal(t, 3, end.Hour())
	assert.Equal(t, 0, end.Minute())
	assert.Equal(t, 8, end.Day())
	assert.Equal(t, 30*time.Minute, end.Sub(start))
}

func TestResolveWindowUnparseableStart(t *testing.T) {
	proposal := &eventdomain.EventProposal{
		Title:    "Design review",
		StartISO: "sometime next week",
		Timezone: "UTC",
	}

	_, _, err := NewTimeResolver().ResolveWindow(proposal, "", "UTC", resolveNow)
	assert.Error(t, err)
}

func TestResolveWindowLenientLayouts(t *testing.T) {
	resolver := NewTimeResolver()
	for _, iso := range []string{"2026-08-21T14:00", "2026-08-21 14:00:00", "2026-08-21"} {
		proposal := &eventdomain.EventProposal{Title: "x", StartISO: iso, Timezone: "UTC"}
		_, _, err := resolver.ResolveWindow(proposal, "", "UTC", resolveNow)
		assert.NoError(t, err, "layout %q", iso)
	}
}

func TestResolveWindowFallsBackToCalendarTimezone(t *testing.T) {
	proposal := &eventdomain.EventProposal{
		Title:    "Design review",
		StartISO: "2026-08-21T14:00:00",
	}

	start, _, err := NewTimeResolver().ResolveWindow(proposal, "", "Europe/Berlin", resolveNow)
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", start.Location().String())
	assert.Equal(t, 14, start.Hour())
}

func TestHasDatePhrase(t *testing.T) {
	resolver := NewTimeResolver()
	assert.True(t, resolver.HasDatePhrase("let's meet tomorrow at 5pm", resolveNow))
	assert.False(t, resolver.HasDatePhrase("thanks for the great work everyone", resolveNow))
}
