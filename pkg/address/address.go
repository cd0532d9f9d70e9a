// Package address parses raw To/Cc header values into structured recipient
// candidates. Pure functions, no side effects.
package address

import (
	"regexp"
	"strings"

	eventdomain "mailpilot-backend/internal/event/domain"
)

// Matches `optional-quoted-name <email>`. Bare emails fall through.
var bracketedRe = regexp.MustCompile(`^(?:"?([^<"]+)"?\s*)?<([^>]+)>$`)

// ParseAddressList splits a raw header value on commas and parses each
// segment as either `Name <email>` or a bare email. Segments without an "@"
// are discarded.
func ParseAddressList(raw string) []eventdomain.RecipientCandidate {
	if raw == "" {
		return nil
	}

	var out []eventdomain.RecipientCandidate
	for _, segment := range strings.Split(raw, ",") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		candidate := eventdomain.RecipientCandidate{Email: segment}
		if m := bracketedRe.FindStringSubmatch(segment); m != nil {
			candidate = eventdomain.RecipientCandidate{
				Email: strings.TrimSpace(m[2]),
				Name:  strings.TrimSpace(m[1]),
			}
		}

		if strings.Contains(candidate.Email, "@") {
			out = append(out, candidate)
		}
	}
	return out
}

// BuildCandidateSet merges To and Cc recipients, deduplicates by lowercase
// email keeping the first-seen display name, and excludes the processing
// user's own address (case-insensitive).
func BuildCandidateSet(to, cc []eventdomain.RecipientCandidate, selfEmail string) []eventdomain.RecipientCandidate {
	self := strings.ToLower(selfEmail)
	seen := make(map[string]struct{})

	var out []eventdomain.RecipientCandidate
	for _, c := range append(append([]eventdomain.RecipientCandidate{}, to...), cc...) {
		key := strings.ToLower(c.Email)
		if self != "" && key == self {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}
