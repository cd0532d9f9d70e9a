package address

import (
	"testing"

	eventdomain "mailpilot-backend/internal/event/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddressList(t *testing.T) {
	got := ParseAddressList(`"Dana Scully" <dana@example.com>, fox@example.com, Walter Skinner <walter@example.com>`)
	require.Len(t, got, 3)

	assert.Equal(t, "dana@example.com", got[0].Email)
	assert.Equal(t, "Dana Scully", got[0].Name)
	assert.Equal(t, "fox@example.com", got[1].Email)
	assert.Empty(t, got[1].Name)
	assert.Equal(t, "walter@example.com", got[2].Email)
	assert.Equal(t, "Walter Skinner", got[2].Name)
}

func TestParseAddressListDropsJunk(t *testing.T) {
	got := ParseAddressList("undisclosed-recipients, , alice@example.com")
	require.Len(t, got, 1)
	assert.Equal(t, "alice@example.com", got[0].Email)
}

func TestParseAddressListEmpty(t *testing.T) {
	assert.Nil(t, ParseAddressList(""))
}

func TestBuildCandidateSet(t *testing.T) {
	to := []eventdomain.RecipientCandidate{
		{Email: "alice@example.com", Name: "Alice"},
		{Email: "me@example.com"},
	}
	cc := []eventdomain.RecipientCandidate{
		{Email: "ALICE@example.com", Name: "A. Liddell"},
		{Email: "bob@example.com"},
	}

	got := BuildCandidateSet(to, cc, "Me@Example.com")
	require.Len(t, got, 2)

	// First-seen name wins on duplicates, the user's own address is excluded.
	assert.Equal(t, "alice@example.com", got[0].Email)
	assert.Equal(t, "Alice", got[0].Name)
	assert.Equal(t, "bob@example.com", got[1].Email)
}
