package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/NotSimone/Kobo-Metadata/internal/catalog"
	"github.com/NotSimone/Kobo-Metadata/internal/resolver"
	"github.com/NotSimone/Kobo-Metadata/internal/transport"
)

const searchResultsPage = `<html><body>
<div data-testid="search-result-widget">
  <a data-testid="title" href="/us/en/ebook/dune-4">Dune</a>
  <a data-testid="contributor-name" href="#">Frank Herbert</a>
  <img src="//cdn.kobo.com/book-images/dune-4/353/569/90/False/thumb.jpg"/>
</div>
</body></html>`

const productPage = `<html><body>
<h1 class="title product-field">Dune</h1>
<span class="visible-contributors"><a href="#">Frank Herbert</a></span>
<div class="synopsis-description"><p>Arrakis.</p></div>
<img class="cover-image" src="//cdn.kobo.com/book-images/dune-4/353/569/90/False/cover.jpg"/>
</body></html>`

const emptyResultsPage = `<html><body><div data-testid="zero-results">No results found.</div></body></html>`

// newTestApp wires the real resolver against a fake catalog, so the handler
// tests cover the full error mapping, not a stub.
func newTestApp(t *testing.T, haveResults bool) *fiber.App {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/us/en/search", func(w http.ResponseWriter, r *http.Request) {
		if !haveResults || r.URL.Query().Get("pageNumber") != "1" {
			fmt.Fprint(w, emptyResultsPage)
			return
		}
		fmt.Fprint(w, searchResultsPage)
	})
	mux.HandleFunc("/us/en/ebook/dune-4", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, productPage)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := transport.New(transport.Options{Timeout: 5 * time.Second, BackoffBase: time.Millisecond})
	if err != nil {
		t.Fatalf("transport.New: %v", err)
	}
	r := resolver.New(client, catalog.NewParser(nil, nil), resolver.Config{
		BaseURL: server.URL,
		Country: "us",
	}, nil)

	app := fiber.New()
	app.Post("/v1/metadata/resolve", NewMetadataHandler(r).Resolve)
	app.Get("/health", NewHealthHandler().Check)
	return app
}

func postResolve(t *testing.T, app *fiber.App, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/metadata/resolve", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req, 10000)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return res
}

func TestResolveEndpointReturnsRecords(t *testing.T) {
	app := newTestApp(t, true)

	res := postResolve(t, app, `{"title":"Dune","authors":["Frank Herbert"]}`)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	var payload struct {
		Records []catalog.Record `json:"records"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(payload.Records))
	}
	record := payload.Records[0]
	if record.Title != "Dune" || record.Score != 1 {
		t.Fatalf("unexpected record: %+v", record)
	}
	if record.CoverURL == nil || !strings.HasSuffix(*record.CoverURL, "/dune-4/cover.jpg") {
		t.Fatalf("unexpected cover url: %+v", record.CoverURL)
	}
}

func TestResolveEndpointNoResults(t *testing.T) {
	app := newTestApp(t, false)

	res := postResolve(t, app, `{"title":"Dune"}`)
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.StatusCode)
	}
}

func TestResolveEndpointInvalidBody(t *testing.T) {
	app := newTestApp(t, true)

	res := postResolve(t, app, `{not json`)
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.StatusCode)
	}
}

func TestResolveEndpointRejectsNegativeMaxResults(t *testing.T) {
	app := newTestApp(t, true)

	res := postResolve(t, app, `{"title":"Dune","maxResults":-1}`)
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.StatusCode)
	}
}

func TestResolveEndpointEmptyQuery(t *testing.T) {
	app := newTestApp(t, true)

	res := postResolve(t, app, `{}`)
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for empty query, got %d", res.StatusCode)
	}
}

func TestResolveEndpointISBNIdentifier(t *testing.T) {
	app := newTestApp(t, true)

	// The fake catalog serves a search page for the identifier lookup, which
	// the resolver treats as "not carried".
	res := postResolve(t, app, `{"identifiers":{"isbn":"9780441172719"}}`)
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.StatusCode)
	}
}

func TestResolveEndpointZeroMaxResultsUsesDefault(t *testing.T) {
	app := newTestApp(t, true)

	res := postResolve(t, app, `{"title":"Dune","maxResults":0}`)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("omitted maxResults must use the default, got %d", res.StatusCode)
	}

	var payload struct {
		Records []catalog.Record `json:"records"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(payload.Records))
	}
}

func TestResolveEndpointIgnoresInvalidISBN(t *testing.T) {
	app := newTestApp(t, true)

	res := postResolve(t, app, `{"title":"Dune","identifiers":{"isbn":"garbage"}}`)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected the text search to carry the request, got %d", res.StatusCode)
	}
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(t, true)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
}
