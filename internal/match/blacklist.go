package match

import "strings"

// Blacklist is an ordered set of lowercased terms. A candidate whose title
// contains any term as a case-insensitive substring is disqualified before
// it is ever scored.
type Blacklist []string

func NewBlacklist(terms []string) Blacklist {
	cleaned := make(Blacklist, 0, len(terms))
	seen := make(map[string]struct{}, len(terms))
	for _, term := range terms {
		lowered := strings.ToLower(strings.TrimSpace(term))
		if lowered == "" {
			continue
		}
		if _, dup := seen[lowered]; dup {
			continue
		}
		seen[lowered] = struct{}{}
		cleaned = append(cleaned, lowered)
	}
	return cleaned
}

// MatchesTitle reports whether any term occurs in the title, ignoring case.
func (b Blacklist) MatchesTitle(title string) bool {
	if len(b) == 0 {
		return false
	}
	lowered := strings.ToLower(title)
	for _, term := range b {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}

// MatchesAnyTag reports whether any tag equals a term, ignoring case. Tags
// are discrete labels, so unlike titles they are compared whole.
func (b Blacklist) MatchesAnyTag(tags []string) bool {
	if len(b) == 0 || len(tags) == 0 {
		return false
	}
	for _, tag := range tags {
		lowered := strings.ToLower(strings.TrimSpace(tag))
		for _, term := range b {
			if lowered == term {
				return true
			}
		}
	}
	return false
}
