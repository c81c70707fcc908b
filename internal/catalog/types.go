package catalog

import "time"

// Query is the caller's identifying input. At least one of Title, Authors or
// ISBN must be populated. When ISBN is set it takes precedence and the text
// fields are ignored.
type Query struct {
	Title   string
	Authors []string
	ISBN    string
}

func (q Query) IsZero() bool {
	return q.Title == "" && len(q.Authors) == 0 && q.ISBN == ""
}

// RawCandidate is one entry extracted from a search results page. It carries
// just enough to rank the entry and to fetch its full record later.
type RawCandidate struct {
	// ID is the catalog path of the product page, e.g. /us/en/ebook/dune-4.
	ID           string
	Title        string
	Author       string
	ThumbnailURL string
}

// ScoredCandidate is a RawCandidate after ranking. Rank is the candidate's
// position after the descending-score stable sort, starting at 0.
type ScoredCandidate struct {
	RawCandidate
	Score float64
	Rank  int
}

// Series is a book's series membership. Index is absent for books that the
// catalog lists in a series without a sequence number.
type Series struct {
	Name  string   `json:"name"`
	Index *float64 `json:"index,omitempty"`
}

// Record is one fully populated metadata result. Optional fields are pointers
// so callers can tell "absent in source" from "empty string".
type Record struct {
	Title       string     `json:"title"`
	Authors     []string   `json:"authors"`
	Synopsis    *string    `json:"synopsis,omitempty"`
	Publisher   *string    `json:"publisher,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	ISBN        *string    `json:"isbn,omitempty"`
	Language    *string    `json:"language,omitempty"`
	Series      *Series    `json:"series,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	CoverURL    *string    `json:"coverUrl,omitempty"`
	CatalogURL  string     `json:"catalogUrl"`
	Score       float64    `json:"score"`
}

// Detail is the parse result of a single product page, before cover
// resolution and blacklist re-checks turn it into a Record.
type Detail struct {
	Title       string
	Authors     []string
	Synopsis    *string
	Publisher   *string
	PublishedAt *time.Time
	ISBN        *string
	Language    *string
	Series      *Series
	Tags        []string
	CoverSrc    string
}
