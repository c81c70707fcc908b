package catalog

import (
	"testing"

	"github.com/NotSimone/Kobo-Metadata/internal/catalog/profile"
)

func TestResolveCoverURL(t *testing.T) {
	rules := profile.CoverRules{
		SizedSegment: "353/569/90/False/",
		SizeToken:    "353/569/90",
		Upscale:      "1650/2200/100",
	}

	cases := []struct {
		name    string
		thumb   string
		upscale bool
		want    string
	}{
		{
			name:  "strip sized segment for original art",
			thumb: "https://cdn.kobo.com/book-images/abc/353/569/90/False/holly-23.jpg",
			want:  "https://cdn.kobo.com/book-images/abc/holly-23.jpg",
		},
		{
			name:    "substitute upscale token",
			thumb:   "https://cdn.kobo.com/book-images/abc/353/569/90/False/holly-23.jpg",
			upscale: true,
			want:    "https://cdn.kobo.com/book-images/abc/1650/2200/100/False/holly-23.jpg",
		},
		{
			name:  "size token without boolean segment",
			thumb: "https://cdn.kobo.com/book-images/abc/353/569/90/holly-23.jpg",
			want:  "https://cdn.kobo.com/book-images/abc/1650/2200/100/holly-23.jpg",
		},
		{
			name:  "unrecognized scheme returned unchanged",
			thumb: "https://cdn.kobo.com/book-images/abc/holly-23.jpg",
			want:  "https://cdn.kobo.com/book-images/abc/holly-23.jpg",
		},
		{
			name:  "empty input",
			thumb: "",
			want:  "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveCoverURL(tc.thumb, rules, tc.upscale)
			if got != tc.want {
				t.Fatalf("ResolveCoverURL(%q, upscale=%v) = %q, want %q", tc.thumb, tc.upscale, got, tc.want)
			}
		})
	}
}
