// Package profile describes versioned page-extraction profiles for the Kobo
// catalog. The catalog reshuffles its markup every so often; keeping the
// selector sets in data means a format change is a profile edit, not a code
// change. Profiles can be loaded from yaml files layered over the built-ins.
package profile

import (
	"fmt"
	"strings"
)

// SearchRules locates result entries on a search page.
type SearchRules struct {
	// Entry selects one search result container.
	Entry string `yaml:"entry"`
	// Link selects, within an entry, the anchor whose href is the product
	// page path and whose text is the result title.
	Link   string `yaml:"link"`
	Author string `yaml:"author"`
	Thumb  string `yaml:"thumb"`
	// NoResults are markers whose presence in the page body means the search
	// legitimately matched nothing, as opposed to the page being
	// unrecognizable.
	NoResults []string `yaml:"no_results"`
}

// DetailRules locates metadata fields on a product page.
type DetailRules struct {
	Title       string `yaml:"title"`
	Authors     string `yaml:"authors"`
	Series      string `yaml:"series"`
	SeriesName  string `yaml:"series_name"`
	SeriesIndex string `yaml:"series_index"`
	// MetaList selects the secondary-metadata list items. The first item is
	// the publisher; the rest are "label: value" pairs (release date, isbn,
	// language).
	MetaList string `yaml:"meta_list"`
	Tags     string `yaml:"tags"`
	Synopsis string `yaml:"synopsis"`
	Cover    string `yaml:"cover"`
}

// CoverRules rewrites a thumbnail URL into a larger variant. Thumbnails embed
// a size token like 353/569/90; stripping the sized segment entirely yields
// the original art, substituting Upscale yields a fixed large render.
type CoverRules struct {
	SizedSegment string `yaml:"sized_segment"`
	SizeToken    string `yaml:"size_token"`
	Upscale      string `yaml:"upscale"`
}

type Profile struct {
	Key     string      `yaml:"key"`
	Enabled *bool       `yaml:"enabled"`
	Search  SearchRules `yaml:"search"`
	Detail  DetailRules `yaml:"detail"`
	Cover   CoverRules  `yaml:"cover"`
}

func (p *Profile) IsEnabled() bool {
	if p.Enabled == nil {
		return true
	}
	return *p.Enabled
}

func (p *Profile) normalizeAndValidate() error {
	p.Key = strings.TrimSpace(p.Key)
	if p.Key == "" {
		return fmt.Errorf("key is required")
	}

	if strings.TrimSpace(p.Search.Entry) == "" {
		return fmt.Errorf("search.entry is required")
	}
	if strings.TrimSpace(p.Search.Link) == "" {
		return fmt.Errorf("search.link is required")
	}

	if strings.TrimSpace(p.Detail.Title) == "" {
		return fmt.Errorf("detail.title is required")
	}
	if strings.TrimSpace(p.Detail.Authors) == "" {
		return fmt.Errorf("detail.authors is required")
	}

	if strings.TrimSpace(p.Cover.SizedSegment) == "" {
		p.Cover.SizedSegment = "353/569/90/False/"
	}
	if strings.TrimSpace(p.Cover.SizeToken) == "" {
		p.Cover.SizeToken = "353/569/90"
	}
	if strings.TrimSpace(p.Cover.Upscale) == "" {
		p.Cover.Upscale = "1650/2200/100"
	}

	return nil
}
