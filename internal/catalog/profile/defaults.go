package profile

// Defaults returns the built-in profiles in the order the parser should try
// them. The catalog has been serving two search page generations side by
// side; the data-testid page is the newer one.
func Defaults() []*Profile {
	return []*Profile{
		{
			Key: "kobo-2024",
			Search: SearchRules{
				Entry:  `div[data-testid="search-result-widget"]`,
				Link:   `a[data-testid="title"]`,
				Author: `a[data-testid="contributor-name"]`,
				Thumb:  `img`,
				NoResults: []string{
					`data-testid="zero-results"`,
					"no results found",
				},
			},
			Detail: detailDefaults(),
			Cover:  coverDefaults(),
		},
		{
			Key: "kobo-legacy",
			Search: SearchRules{
				Entry:  `div.item-detail`,
				Link:   `h2.title.product-field a`,
				Author: `span.visible-contributors a`,
				Thumb:  `img.cover-image`,
				NoResults: []string{
					"no-search-results",
					"we could not find any results",
				},
			},
			Detail: detailDefaults(),
			Cover:  coverDefaults(),
		},
	}
}

// Product pages have kept the same markup across both search page
// generations, so the detail rules are shared.
func detailDefaults() DetailRules {
	return DetailRules{
		Title:       `h1.title.product-field`,
		Authors:     `span.visible-contributors a`,
		Series:      `span.series.product-field`,
		SeriesName:  `span.product-sequence-field a`,
		SeriesIndex: `span.sequenced-name-prefix`,
		MetaList:    `div.bookitem-secondary-metadata ul li`,
		Tags:        `ul.category-rankings meta[property="genre"]`,
		Synopsis:    `div.synopsis-description`,
		Cover:       `img[class*="cover-image"]`,
	}
}

func coverDefaults() CoverRules {
	return CoverRules{
		SizedSegment: "353/569/90/False/",
		SizeToken:    "353/569/90",
		Upscale:      "1650/2200/100",
	}
}
