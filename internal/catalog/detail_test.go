package catalog

import (
	"errors"
	"testing"
	"time"
)

const bookPage = `
<!DOCTYPE html>
<html>
<body>
  <h1 class="title product-field"> Dune </h1>
  <span class="visible-contributors">
    <a href="#">Frank Herbert</a>
    <a href="#">Brian Herbert</a>
  </span>
  <span class="series product-field">
    <span class="sequenced-name-prefix">Book 1 - </span>
    <span class="product-sequence-field"><a href="#">Dune Chronicles</a></span>
  </span>
  <div class="bookitem-secondary-metadata">
    <ul>
      <li> Ace </li>
      <li>Release Date: <span>September 1, 1990</span></li>
      <li>ISBN: <span>9780441172719</span></li>
      <li>Language: <span>English</span></li>
    </ul>
  </div>
  <ul class="category-rankings">
    <meta property="genre" content="Science Fiction, Classic"/>
    <meta property="genre" content="Space Opera"/>
  </ul>
  <div class="synopsis-description"><p>Set on the desert planet Arrakis.</p></div>
  <img class="cover-image kobo-lazy" src="//cdn.kobo.com/book-images/abc/353/569/90/False/dune.jpg"/>
</body>
</html>`

func TestParseBookFullRecord(t *testing.T) {
	parser := NewParser(nil, nil)

	detail, err := parser.ParseBook([]byte(bookPage))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if detail.Title != "Dune" {
		t.Fatalf("unexpected title: %q", detail.Title)
	}
	if len(detail.Authors) != 2 || detail.Authors[0] != "Frank Herbert" || detail.Authors[1] != "Brian Herbert" {
		t.Fatalf("unexpected authors: %v", detail.Authors)
	}

	if detail.Series == nil || detail.Series.Name != "Dune Chronicles" {
		t.Fatalf("unexpected series: %+v", detail.Series)
	}
	if detail.Series.Index == nil || *detail.Series.Index != 1 {
		t.Fatalf("expected series index 1, got %+v", detail.Series.Index)
	}

	if detail.Publisher == nil || *detail.Publisher != "Ace" {
		t.Fatalf("unexpected publisher: %+v", detail.Publisher)
	}
	want := time.Date(1990, time.September, 1, 0, 0, 0, 0, time.UTC)
	if detail.PublishedAt == nil || !detail.PublishedAt.Equal(want) {
		t.Fatalf("unexpected release date: %+v", detail.PublishedAt)
	}
	if detail.ISBN == nil || *detail.ISBN != "9780441172719" {
		t.Fatalf("unexpected isbn: %+v", detail.ISBN)
	}
	if detail.Language == nil || *detail.Language != "English" {
		t.Fatalf("unexpected language: %+v", detail.Language)
	}

	if len(detail.Tags) != 2 || detail.Tags[0] != "Science Fiction Classic" || detail.Tags[1] != "Space Opera" {
		t.Fatalf("unexpected tags: %v", detail.Tags)
	}

	if detail.Synopsis == nil || *detail.Synopsis != "<p>Set on the desert planet Arrakis.</p>" {
		t.Fatalf("unexpected synopsis: %+v", detail.Synopsis)
	}
	if detail.CoverSrc != "https://cdn.kobo.com/book-images/abc/353/569/90/False/dune.jpg" {
		t.Fatalf("unexpected cover src: %q", detail.CoverSrc)
	}
}

func TestParseBookAbsentFieldsStayAbsent(t *testing.T) {
	parser := NewParser(nil, nil)

	page := `<html><body>
		<h1 class="title product-field">Untitled Draft</h1>
		<span class="visible-contributors"><a href="#">Anonymous</a></span>
	</body></html>`
	detail, err := parser.ParseBook([]byte(page))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if detail.Publisher != nil || detail.PublishedAt != nil || detail.ISBN != nil ||
		detail.Language != nil || detail.Series != nil || detail.Synopsis != nil {
		t.Fatalf("expected absent fields to be nil, got %+v", detail)
	}
	if detail.Tags != nil {
		t.Fatalf("expected no tags, got %v", detail.Tags)
	}
}

func TestParseBookSeriesWithoutIndex(t *testing.T) {
	parser := NewParser(nil, nil)

	page := `<html><body>
		<h1 class="title product-field">Les Damnees</h1>
		<span class="visible-contributors"><a href="#">Camille Schmoll</a></span>
		<span class="series product-field">
			<span class="series product-field">
				<span class="product-sequence-field"><a href="#">Essais</a></span>
			</span>
		</span>
	</body></html>`
	detail, err := parser.ParseBook([]byte(page))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.Series == nil || detail.Series.Name != "Essais" {
		t.Fatalf("unexpected series: %+v", detail.Series)
	}
	if detail.Series.Index != nil {
		t.Fatalf("expected absent index, got %v", *detail.Series.Index)
	}
}

func TestParseBookUnrecognizedPage(t *testing.T) {
	parser := NewParser(nil, nil)

	_, err := parser.ParseBook([]byte(`<html><body><p>not a product page</p></body></html>`))
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}
