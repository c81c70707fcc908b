package match

import "testing"

func TestNewBlacklistCleansTerms(t *testing.T) {
	b := NewBlacklist([]string{" Junior ", "JUNIOR", "", "box set"})
	if len(b) != 2 {
		t.Fatalf("expected duplicates and blanks removed, got %v", b)
	}
	if b[0] != "junior" || b[1] != "box set" {
		t.Fatalf("expected lowered terms in input order, got %v", b)
	}
}

func TestMatchesTitle(t *testing.T) {
	b := NewBlacklist([]string{"junior"})

	cases := []struct {
		title string
		want  bool
	}{
		{"Dune Junior Edition", true},
		{"DUNE JUNIOR EDITION", true},
		{"Dune", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := b.MatchesTitle(tc.title); got != tc.want {
			t.Fatalf("MatchesTitle(%q) = %v, want %v", tc.title, got, tc.want)
		}
	}

	if NewBlacklist(nil).MatchesTitle("anything") {
		t.Fatalf("empty blacklist must never match")
	}
}

func TestMatchesAnyTag(t *testing.T) {
	b := NewBlacklist([]string{"erotica"})

	if !b.MatchesAnyTag([]string{"Science Fiction", "Erotica"}) {
		t.Fatalf("expected whole-tag match, ignoring case")
	}
	// Titles match on substrings, tags only on the whole label.
	if b.MatchesAnyTag([]string{"Non-Erotica Essays"}) {
		t.Fatalf("partial tag must not match")
	}
	if b.MatchesAnyTag(nil) {
		t.Fatalf("no tags must not match")
	}
}
