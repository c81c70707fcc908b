package catalog

import (
	"errors"
	"testing"
)

const newFormatSearchPage = `
<!DOCTYPE html>
<html>
<body>
  <div data-testid="search-result-widget">
    <a data-testid="title" href="/us/en/ebook/dune-4">Dune</a>
    <a data-testid="title" href="/us/en/ebook/dune-4">Dune</a>
    <a data-testid="contributor-name" href="/author/frank-herbert">Frank Herbert</a>
    <img src="//cdn.kobo.com/book-images/aaa/353/569/90/False/dune.jpg"/>
  </div>
  <div data-testid="search-result-widget">
    <a data-testid="title" href="/us/en/ebook/dune-messiah">Dune Messiah</a>
    <a data-testid="contributor-name" href="/author/frank-herbert">Frank Herbert</a>
    <img src="//cdn.kobo.com/book-images/bbb/353/569/90/False/dune-messiah.jpg"/>
  </div>
  <div data-testid="search-result-widget">
    <a data-testid="title" href=""></a>
  </div>
</body>
</html>`

const legacySearchPage = `
<!DOCTYPE html>
<html>
<body>
  <div class="item-detail">
    <h2 class="title product-field"><a href="/us/en/ebook/holly-23">Holly</a></h2>
    <span class="visible-contributors"><a href="#">Stephen King</a></span>
    <img class="cover-image" src="//cdn.kobo.com/book-images/ccc/353/569/90/False/holly-23.jpg"/>
  </div>
</body>
</html>`

func TestParseSearchNewFormat(t *testing.T) {
	parser := NewParser(nil, nil)

	candidates, err := parser.ParseSearch([]byte(newFormatSearchPage))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates (duplicate link collapsed, malformed entry skipped), got %d", len(candidates))
	}
	first := candidates[0]
	if first.ID != "/us/en/ebook/dune-4" {
		t.Fatalf("unexpected id: %s", first.ID)
	}
	if first.Title != "Dune" || first.Author != "Frank Herbert" {
		t.Fatalf("unexpected title/author: %q / %q", first.Title, first.Author)
	}
	if first.ThumbnailURL != "https://cdn.kobo.com/book-images/aaa/353/569/90/False/dune.jpg" {
		t.Fatalf("expected protocol-relative thumb made absolute, got %s", first.ThumbnailURL)
	}
	if candidates[1].Title != "Dune Messiah" {
		t.Fatalf("expected parse order preserved, got %q second", candidates[1].Title)
	}
}

func TestParseSearchLegacyFormat(t *testing.T) {
	parser := NewParser(nil, nil)

	candidates, err := parser.ParseSearch([]byte(legacySearchPage))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].ID != "/us/en/ebook/holly-23" || candidates[0].Author != "Stephen King" {
		t.Fatalf("unexpected candidate: %+v", candidates[0])
	}
}

func TestParseSearchEmptyResultsPage(t *testing.T) {
	parser := NewParser(nil, nil)

	page := `<!DOCTYPE html><html><body><div data-testid="zero-results">No results found for your search.</div></body></html>`
	candidates, err := parser.ParseSearch([]byte(page))
	if err != nil {
		t.Fatalf("empty results page must not be an error, got %v", err)
	}
	if len(candidates) != 0 {
		t.Fatalf("expected no candidates, got %d", len(candidates))
	}
}

func TestParseSearchUnrecognizedPage(t *testing.T) {
	parser := NewParser(nil, nil)

	_, err := parser.ParseSearch([]byte(`<html><body><p>totally different markup</p></body></html>`))
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError for unrecognized page, got %v", err)
	}
}
