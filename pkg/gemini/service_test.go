package gemini

import (
	"testing"
	"time"

	eventdomain "mailpilot-backend/internal/event/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func proposeRequest() *eventdomain.ProposeRequest {
	return &eventdomain.ProposeRequest{
		Subject:  "Design review",
		ThreadID: "thread-1",
		Timezone: "Europe/Berlin",
		Now:      time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC),
		Candidates: []eventdomain.RecipientCandidate{
			{Email: "alice@example.com", Name: "Alice"},
		},
	}
}

func TestParseProposal(t *testing.T) {
	reply := `{"is_event": true, "title": "Design review", "description": "Quarterly UI review", "start": "2026-08-21T14:00:00", "end": "2026-08-21T15:00:00", "timezone": "Europe/Berlin", "attendees": ["alice@example.com"]}`

	got, err := ParseProposal(reply, proposeRequest())
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "Design review", got.Title)
	assert.Equal(t, "2026-08-21T14:00:00", got.StartISO)
	assert.Equal(t, "2026-08-21T15:00:00", got.EndISO)
	assert.Equal(t, "Europe/Berlin", got.Timezone)
	assert.Equal(t, "thread-1", got.Source.ThreadID)
	require.Len(t, got.Attendees, 1)
	assert.Equal(t, "alice@example.com", got.Attendees[0].Email)
}

func TestParseProposalStripsMarkdownFence(t *testing.T) {
	reply := "```json\n{\"is_event\": true, \"title\": \"Standup\", \"start\": \"2026-08-21T09:00:00\", \"timezone\": \"UTC\"}\n```"

	got, err := ParseProposal(reply, proposeRequest())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Standup", got.Title)
}

func TestParseProposalAbstention(t *testing.T) {
	got, err := ParseProposal(`{"is_event": false}`, proposeRequest())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestParseProposalMissingStartIsAbstention(t *testing.T) {
	got, err := ParseProposal(`{"is_event": true, "title": "Sometime"}`, proposeRequest())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestParseProposalRejectsGarbage(t *testing.T) {
	_, err := ParseProposal("I could not find an event.", proposeRequest())
	assert.Error(t, err)
}

func TestBuildPromptMentionsContext(t *testing.T) {
	prompt := BuildPrompt(proposeRequest())
	assert.Contains(t, prompt, "Europe/Berlin")
	assert.Contains(t, prompt, "alice@example.com")
	assert.Contains(t, prompt, "Design review")
}
