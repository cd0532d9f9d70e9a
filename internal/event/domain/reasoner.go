package domain

import (
	"context"
	"time"
)

// ProposeRequest carries everything the reasoner may look at for one
// conversation.
type ProposeRequest struct {
	Subject    string
	Body       string
	Candidates []RecipientCandidate
	ThreadID   string
	Timezone   string
	Now        time.Time
}

// EventReasoner reads a conversation and either proposes a calendar event or
// abstains. A (nil, nil) return is an abstention, not an error.
type EventReasoner interface {
	ProposeEvent(ctx context.Context, req *ProposeRequest) (*EventProposal, error)

	// Name identifies the backing provider for logging.
	Name() string
}
