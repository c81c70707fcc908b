package catalog

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/NotSimone/Kobo-Metadata/internal/catalog/profile"
)

// Books in a series carry a "Book N - " prefix before the series name.
var seriesIndexPattern = regexp.MustCompile(`^Book (.+?) -`)

var releaseDateLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"2006-01-02",
}

// ParseBook extracts the metadata fields from a product page. Fields the
// page does not carry stay nil; a page without a recognizable title is a
// ParseError since every product page has one.
func (p *Parser) ParseBook(body []byte) (*Detail, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &ParseError{Reason: "product page is not html"}
	}

	for _, prof := range p.profiles {
		title := cleanText(doc.Find(prof.Detail.Title).First().Text())
		if title == "" {
			continue
		}
		return extractDetail(doc, prof, title), nil
	}

	return nil, &ParseError{Reason: "no product page title matched any profile"}
}

func extractDetail(doc *goquery.Document, prof *profile.Profile, title string) *Detail {
	detail := &Detail{Title: title}

	doc.Find(prof.Detail.Authors).Each(func(_ int, s *goquery.Selection) {
		if author := cleanText(s.Text()); author != "" {
			detail.Authors = append(detail.Authors, author)
		}
	})

	detail.Series = extractSeries(doc, prof)
	extractSecondaryMetadata(doc, prof, detail)

	tags := make([]string, 0, 4)
	seen := make(map[string]struct{}, 4)
	doc.Find(prof.Detail.Tags).Each(func(_ int, s *goquery.Selection) {
		content, ok := s.Attr("content")
		if !ok {
			return
		}
		// Downstream consumers treat commas as tag separators.
		tag := cleanText(strings.ReplaceAll(content, ", ", " "))
		if tag == "" {
			return
		}
		key := strings.ToLower(tag)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		tags = append(tags, tag)
	})
	if len(tags) > 0 {
		detail.Tags = tags
	}

	if synopsis := doc.Find(prof.Detail.Synopsis).First(); synopsis.Length() > 0 {
		if inner, err := synopsis.Html(); err == nil {
			if trimmed := strings.TrimSpace(inner); trimmed != "" {
				detail.Synopsis = &trimmed
			}
		}
	}

	if src, ok := doc.Find(prof.Detail.Cover).First().Attr("src"); ok {
		detail.CoverSrc = absoluteImageURL(src)
	}

	return detail
}

// Books in a series without an index nest an extra series product-field
// element, so the last match is the authoritative one.
func extractSeries(doc *goquery.Document, prof *profile.Profile) *Series {
	container := doc.Find(prof.Detail.Series).Last()
	if container.Length() == 0 {
		return nil
	}

	name := cleanText(container.Find(prof.Detail.SeriesName).First().Text())
	if name == "" {
		return nil
	}
	series := &Series{Name: name}

	prefix := cleanText(container.Find(prof.Detail.SeriesIndex).First().Text())
	if match := seriesIndexPattern.FindStringSubmatch(prefix); len(match) == 2 {
		if index, err := strconv.ParseFloat(strings.TrimSpace(match[1]), 64); err == nil {
			series.Index = &index
		}
	}

	return series
}

// The secondary metadata list leads with the publisher and follows with
// labelled "Release Date:" / "ISBN:" / "Language:" items whose values sit in
// a child span.
func extractSecondaryMetadata(doc *goquery.Document, prof *profile.Profile, detail *Detail) {
	doc.Find(prof.Detail.MetaList).Each(func(i int, s *goquery.Selection) {
		if i == 0 {
			if publisher := cleanText(ownText(s)); publisher != "" {
				detail.Publisher = &publisher
			}
			return
		}

		label := cleanText(ownText(s))
		value := cleanText(s.Find("span").First().Text())
		if value == "" {
			return
		}

		switch label {
		case "Release Date:":
			if released := parseReleaseDate(value); released != nil {
				detail.PublishedAt = released
			}
		case "ISBN:":
			if isbn, ok := NormalizeISBN(value); ok {
				detail.ISBN = &isbn
			}
		case "Language:":
			language := value
			detail.Language = &language
		}
	})
}

// ownText returns the element's direct text content, excluding children.
func ownText(s *goquery.Selection) string {
	return s.Clone().Children().Remove().End().Text()
}

func parseReleaseDate(raw string) *time.Time {
	for _, layout := range releaseDateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			utc := parsed.UTC()
			return &utc
		}
	}
	return nil
}
