package catalog

import (
	"strings"

	"github.com/NotSimone/Kobo-Metadata/internal/catalog/profile"
)

// ResolveCoverURL derives a high-resolution cover URL from a thumbnail URL.
// Thumbnails embed a size segment, e.g.
//
//	https://cdn.kobo.com/book-images/<id>/353/569/90/False/holly-23.jpg
//
// Stripping the whole sized segment yields the original art; with upscale
// set, the size token is swapped for a fixed large render instead and the
// CDN resizes to the requested width. If neither pattern matches the URL is
// returned unchanged: a thumbnail-sized cover beats no cover.
func ResolveCoverURL(thumb string, rules profile.CoverRules, upscale bool) string {
	trimmed := strings.TrimSpace(thumb)
	if trimmed == "" {
		return ""
	}

	if upscale && strings.Contains(trimmed, rules.SizeToken) {
		return strings.Replace(trimmed, rules.SizeToken, rules.Upscale, 1)
	}
	if strings.Contains(trimmed, rules.SizedSegment) {
		return strings.Replace(trimmed, rules.SizedSegment, "", 1)
	}
	if strings.Contains(trimmed, rules.SizeToken) {
		return strings.Replace(trimmed, rules.SizeToken, rules.Upscale, 1)
	}
	return trimmed
}
