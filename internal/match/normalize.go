// Package match scores and ranks search candidates against the caller's
// query. All functions are pure; the similarity metric is an implementation
// detail behind Scorer, not a contract.
package match

import (
	"regexp"
	"strings"
)

var normalizeReplacer = strings.NewReplacer(
	"-", " ",
	".", " ",
	"_", " ",
	",", " ",
	":", " ",
	";", " ",
	"!", " ",
	"?", " ",
	"(", " ",
	")", " ",
	"[", " ",
	"]", " ",
	"{", " ",
	"}", " ",
	"'", " ",
	"\"", " ",
	"/", " ",
	"\\", " ",
	"|", " ",
	"+", " ",
	"=", " ",
	"#", " ",
	"&", " ",
	"*", " ",
)

var (
	trailingParenthetical = regexp.MustCompile(`\s*\([^)]*\)\s*$`)
	subtitleDelimiter     = regexp.MustCompile(`\s*[:\x{2013}\x{2014}]\s`)
)

// Normalize lowercases, maps punctuation to spaces and collapses runs of
// whitespace, so comparisons ignore case and formatting noise.
func Normalize(value string) string {
	clean := strings.ToLower(strings.TrimSpace(value))
	if clean == "" {
		return ""
	}
	clean = normalizeReplacer.Replace(clean)
	return strings.Join(strings.Fields(clean), " ")
}

func Tokenize(normalized string) []string {
	trimmed := strings.TrimSpace(normalized)
	if trimmed == "" {
		return nil
	}

	parts := strings.Fields(trimmed)
	tokens := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		if _, exists := seen[part]; exists {
			continue
		}
		seen[part] = struct{}{}
		tokens = append(tokens, part)
	}

	return tokens
}

// StripSeriesSuffix removes a trailing parenthetical or a colon/dash
// delimited subtitle, so "Dune (Dune Chronicles Book 1)" and
// "Dune: Deluxe Edition" both compare as "Dune". Applied before
// normalization, which would otherwise erase the delimiters.
func StripSeriesSuffix(title string) string {
	trimmed := strings.TrimSpace(title)
	stripped := trailingParenthetical.ReplaceAllString(trimmed, "")
	if loc := subtitleDelimiter.FindStringIndex(stripped); loc != nil && loc[0] > 0 {
		stripped = stripped[:loc[0]]
	}
	stripped = strings.TrimSpace(stripped)
	if stripped == "" {
		return trimmed
	}
	return stripped
}
