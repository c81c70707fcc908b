package catalog

import (
	"net/url"
	"strconv"
	"strings"
)

const DefaultBaseURL = "https://www.kobo.com"

type RequestKind string

const (
	// RequestISBN is a direct identifier lookup. The catalog redirects it to
	// the product page when the identifier resolves.
	RequestISBN RequestKind = "isbn"
	// RequestSearch is a fuzzy text search, one request per result page.
	RequestSearch RequestKind = "search"
)

// Request is one catalog request the transport should issue.
type Request struct {
	URL  string
	Kind RequestKind
}

type BuildOptions struct {
	BaseURL string
	// Country is the storefront segment of the search path, e.g. "us".
	Country string
	// Pages is how many search result pages to emit requests for.
	Pages int
	// StripLeadingZeroes drops leading zeroes from title tokens. The catalog
	// search does a poor job matching zero-padded numbers.
	StripLeadingZeroes bool
}

// BuildRequests turns a Query into the catalog requests that serve it. A
// valid ISBN yields exactly one identifier lookup and the text fields are
// ignored; an identifier that is not a valid ISBN is treated as absent, like
// any other identifier scheme the catalog cannot look up. Otherwise title and
// author text are combined into one search string so the catalog's own
// relevance ranking sees both signals.
func BuildRequests(q Query, opts BuildOptions) ([]Request, error) {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	country := strings.TrimSpace(opts.Country)
	if country == "" {
		country = "us"
	}
	pages := opts.Pages
	if pages <= 0 {
		pages = 1
	}

	if q.ISBN != "" {
		if isbn, ok := NormalizeISBN(q.ISBN); ok {
			return []Request{{URL: searchURL(base, country, isbn, 1), Kind: RequestISBN}}, nil
		}
	}

	text := buildSearchText(q, opts.StripLeadingZeroes)
	if text == "" {
		return nil, &InvalidQueryError{Reason: "need a title, an author or a valid isbn"}
	}

	requests := make([]Request, 0, pages)
	for page := 1; page <= pages; page++ {
		requests = append(requests, Request{URL: searchURL(base, country, text, page), Kind: RequestSearch})
	}
	return requests, nil
}

func buildSearchText(q Query, stripLeadingZeroes bool) string {
	tokens := make([]string, 0, 8)
	for _, token := range strings.Fields(q.Title) {
		if stripLeadingZeroes {
			if stripped := strings.TrimLeft(token, "0"); stripped != "" {
				token = stripped
			}
		}
		tokens = append(tokens, token)
	}
	for _, author := range q.Authors {
		tokens = append(tokens, strings.Fields(author)...)
	}
	return strings.Join(tokens, " ")
}

func searchURL(base, country, query string, page int) string {
	values := url.Values{}
	values.Set("query", query)
	values.Set("fcmedia", "Book")
	values.Set("pageNumber", strconv.Itoa(page))
	values.Set("fclanguages", "all")
	return base + "/" + country + "/en/search?" + values.Encode()
}
