package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshteinDistance(t *testing.T) {
	assert.Equal(t, 0, LevenshteinDistance("kickoff", "kickoff"))
	assert.Equal(t, 7, LevenshteinDistance("", "kickoff"))
	assert.Equal(t, 3, LevenshteinDistance("kitten", "sitting"))
	assert.Equal(t, 1, LevenshteinDistance("sync", "synk"))
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 0.0, Similarity("", "team sync"))
	assert.Equal(t, 1.0, Similarity("team sync", "team sync"))
	assert.InDelta(t, 0.9, Similarity("project kickoff", "project kickofz"), 0.05)
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Re: Project Kickoff!", "project kickoff"},
		{"FWD: Re-review", "rereview"},
		{"Meeting: Q3 Planning", "q3 planning"},
		{"  Lunch   with   Sam  ", "lunch with sam"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeTitle(tt.in), "input %q", tt.in)
	}
}

func TestNormalizeTitleTruncates(t *testing.T) {
	long := "planning session for the annual company strategy retreat in the mountains"
	got := NormalizeTitle(long)
	assert.LessOrEqual(t, len([]rune(got)), 60)
}

func TestTokenOverlap(t *testing.T) {
	assert.Equal(t, 1.0, TokenOverlap("project kickoff meeting", "kickoff project"))
	assert.Equal(t, 0.0, TokenOverlap("lunch with sam", "quarterly review"))
	assert.Equal(t, 0.0, TokenOverlap("", "anything"))
}

func TestTitlesMatch(t *testing.T) {
	// Exact match after normalization.
	assert.True(t, TitlesMatch("project kickoff", "project kickoff"))
	// Near-identical titles.
	assert.True(t, TitlesMatch("project kickoff meeting", "project kickoff meting"))
	// Moderate edit similarity rescued by strong token overlap.
	assert.True(t, TitlesMatch("weekly team sync notes", "weekly team sync call"))
	// Unrelated titles.
	assert.False(t, TitlesMatch("lunch with sam", "quarterly budget review"))
}
