package match

import (
	"strings"

	"github.com/NotSimone/Kobo-Metadata/internal/catalog"
)

// Default field weights. Title similarity dominates; the author field on
// search pages is noisy (translators, narrators) so it only nudges the
// ordering. Tunable, not a contract.
const (
	DefaultTitleWeight  = 0.7
	DefaultAuthorWeight = 0.3
)

// Scorer computes a normalized [0,1] match score between a query and a
// candidate. The zero value is not usable; call NewScorer.
type Scorer struct {
	TitleWeight  float64
	AuthorWeight float64
}

func NewScorer() Scorer {
	return Scorer{TitleWeight: DefaultTitleWeight, AuthorWeight: DefaultAuthorWeight}
}

// Score weighs title similarity against author similarity when the query
// carries both; with only a title the title similarity is the whole score,
// and symmetrically for an author-only query.
func (s Scorer) Score(q catalog.Query, c catalog.RawCandidate) float64 {
	queryTitle := Normalize(StripSeriesSuffix(q.Title))
	queryAuthor := Normalize(strings.Join(q.Authors, " "))

	switch {
	case queryTitle != "" && queryAuthor != "":
		titleSim := Similarity(queryTitle, Normalize(StripSeriesSuffix(c.Title)))
		authorSim := Similarity(queryAuthor, Normalize(c.Author))
		return s.TitleWeight*titleSim + s.AuthorWeight*authorSim
	case queryTitle != "":
		return Similarity(queryTitle, Normalize(StripSeriesSuffix(c.Title)))
	case queryAuthor != "":
		return Similarity(queryAuthor, Normalize(c.Author))
	default:
		return 0
	}
}

// Similarity is the better of a token-overlap measure and a normalized
// edit-distance measure over already-normalized strings. Token overlap
// forgives word reordering; edit distance forgives small typos.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	overlap := tokenOverlap(Tokenize(a), Tokenize(b))
	edit := editSimilarity(a, b)
	if overlap > edit {
		return overlap
	}
	return edit
}

// tokenOverlap is the Dice coefficient over the two token sets.
func tokenOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	set := make(map[string]struct{}, len(a))
	for _, token := range a {
		set[token] = struct{}{}
	}
	shared := 0
	for _, token := range b {
		if _, ok := set[token]; ok {
			shared++
		}
	}
	return 2 * float64(shared) / float64(len(a)+len(b))
}

func editSimilarity(a, b string) float64 {
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 0
	}
	return 1 - float64(levenshtein(a, b))/float64(longest)
}

func levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	previous := make([]int, len(rb)+1)
	current := make([]int, len(rb)+1)
	for j := range previous {
		previous[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		current[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			current[j] = minInt(
				previous[j]+1,
				current[j-1]+1,
				previous[j-1]+cost,
			)
		}
		previous, current = current, previous
	}

	return previous[len(rb)]
}

func minInt(values ...int) int {
	lowest := values[0]
	for _, v := range values[1:] {
		if v < lowest {
			lowest = v
		}
	}
	return lowest
}
