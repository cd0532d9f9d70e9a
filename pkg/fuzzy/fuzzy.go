package fuzzy

import (
	"regexp"
	"strings"
)

var (
	replyPrefixRe  = regexp.MustCompile(`(?i)^(re:|fwd?:|fw:|meeting:|event:)\s*`)
	nonWordSpaceRe = regexp.MustCompile(`[^\w\s]`)
)

// LevenshteinDistance calculates the edit distance between two strings.
// Insertions, deletions and substitutions each cost 1.
func LevenshteinDistance(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)
	m := len(r1)
	n := len(r2)

	if m == 0 {
		return n
	}
	if n == 0 {
		return m
	}

	d := make([][]int, m+1)
	for i := range d {
		d[i] = make([]int, n+1)
	}

	for i := 0; i <= m; i++ {
		d[i][0] = i
	}
	for j := 0; j <= n; j++ {
		d[0][j] = j
	}

	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			d[i][j] = min3(
				d[i-1][j]+1,      // deletion
				d[i][j-1]+1,      // insertion
				d[i-1][j-1]+cost, // substitution
			)
		}
	}

	return d[m][n]
}

// Similarity maps edit distance into [0,1]: (maxLen - distance) / maxLen.
// Identical strings score 1.0, fully disjoint strings score 0.0.
func Similarity(s1, s2 string) float64 {
	len1 := len([]rune(s1))
	len2 := len([]rune(s2))
	if len1 == 0 {
		if len2 == 0 {
			return 1
		}
		return 0
	}
	if len2 == 0 {
		return 0
	}

	maxLen := len1
	if len2 > maxLen {
		maxLen = len2
	}
	return float64(maxLen-LevenshteinDistance(s1, s2)) / float64(maxLen)
}

// TokenOverlap computes |A∩B| / min(|A|,|B|) over case-insensitive word sets.
// Words of 2 characters or fewer are ignored.
func TokenOverlap(s1, s2 string) float64 {
	set1 := tokenSet(s1)
	set2 := tokenSet(s2)
	if len(set1) == 0 || len(set2) == 0 {
		return 0
	}

	intersection := 0
	for w := range set1 {
		if _, ok := set2[w]; ok {
			intersection++
		}
	}

	minSize := len(set1)
	if len(set2) < minSize {
		minSize = len(set2)
	}
	return float64(intersection) / float64(minSize)
}

// NormalizeTitle reduces an email subject or event title to a comparable form:
// leading reply/forward prefixes stripped, punctuation removed, whitespace
// collapsed, lowercased, truncated to 60 characters.
func NormalizeTitle(s string) string {
	s = replyPrefixRe.ReplaceAllString(s, "")
	s = nonWordSpaceRe.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")
	s = strings.ToLower(strings.TrimSpace(s))

	runes := []rune(s)
	if len(runes) > 60 {
		s = strings.TrimSpace(string(runes[:60]))
	}
	return s
}

// TitlesMatch applies the duplicate-title decision rule over two already
// normalized titles: exact equality, or high edit similarity, or moderate
// similarity combined with strong token overlap.
func TitlesMatch(a, b string) bool {
	if a == b {
		return true
	}
	sim := Similarity(a, b)
	if sim > 0.85 {
		return true
	}
	return sim > 0.70 && TokenOverlap(a, b) > 0.60
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		if len([]rune(w)) > 2 {
			set[w] = struct{}{}
		}
	}
	return set
}

func min3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
