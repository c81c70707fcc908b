package catalog

import (
	"bytes"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/NotSimone/Kobo-Metadata/internal/catalog/profile"
)

// Parser extracts candidates and detail records from catalog pages. It tries
// its profiles in order, so a newer page format is recognized before the
// legacy one and user-supplied profiles can paper over format drift.
type Parser struct {
	profiles []*profile.Profile
	logger   *slog.Logger
}

func NewParser(profiles []*profile.Profile, logger *slog.Logger) *Parser {
	if len(profiles) == 0 {
		profiles = profile.Defaults()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{profiles: profiles, logger: logger}
}

// CoverRules exposes the preferred profile's cover rewrite rules.
func (p *Parser) CoverRules() profile.CoverRules {
	return p.profiles[0].Cover
}

// ParseSearch extracts the raw candidates from a search results page.
// Individual malformed entries are skipped. A page where no profile extracts
// anything is a ParseError unless a profile's no-results marker is present,
// which means the search legitimately matched nothing.
func (p *Parser) ParseSearch(body []byte) ([]RawCandidate, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &ParseError{Reason: "search page is not html"}
	}

	for _, prof := range p.profiles {
		entries := doc.Find(prof.Search.Entry)
		if entries.Length() == 0 {
			continue
		}

		candidates := make([]RawCandidate, 0, entries.Length())
		seen := make(map[string]struct{}, entries.Length())
		entries.Each(func(_ int, entry *goquery.Selection) {
			candidate, ok := extractCandidate(entry, prof)
			if !ok {
				p.logger.Debug("skipping malformed search entry", "profile", prof.Key)
				return
			}
			// The newer page repeats each product link for mobile and
			// desktop layouts.
			if _, dup := seen[candidate.ID]; dup {
				return
			}
			seen[candidate.ID] = struct{}{}
			candidates = append(candidates, candidate)
		})

		if len(candidates) > 0 {
			return candidates, nil
		}
	}

	lower := strings.ToLower(string(body))
	for _, prof := range p.profiles {
		for _, marker := range prof.Search.NoResults {
			if marker != "" && strings.Contains(lower, strings.ToLower(marker)) {
				return nil, nil
			}
		}
	}

	return nil, &ParseError{Reason: "no search entries matched any profile"}
}

func extractCandidate(entry *goquery.Selection, prof *profile.Profile) (RawCandidate, bool) {
	link := entry.Find(prof.Search.Link).First()
	href, hasHref := link.Attr("href")
	href = strings.TrimSpace(href)
	title := cleanText(link.Text())
	if !hasHref || href == "" || title == "" {
		return RawCandidate{}, false
	}

	candidate := RawCandidate{
		ID:    href,
		Title: title,
	}
	if prof.Search.Author != "" {
		candidate.Author = cleanText(entry.Find(prof.Search.Author).First().Text())
	}
	if prof.Search.Thumb != "" {
		if src, ok := entry.Find(prof.Search.Thumb).First().Attr("src"); ok {
			candidate.ThumbnailURL = absoluteImageURL(src)
		}
	}
	return candidate, true
}

func absoluteImageURL(src string) string {
	trimmed := strings.TrimSpace(src)
	if strings.HasPrefix(trimmed, "//") {
		return "https:" + trimmed
	}
	return trimmed
}

func cleanText(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}
