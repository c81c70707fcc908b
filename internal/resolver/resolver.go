// Package resolver orchestrates the metadata pipeline: query build, search
// fetch and parse, blacklist filter and fuzzy rank, then bounded-concurrency
// detail fetches whose results are reassembled in rank order.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/NotSimone/Kobo-Metadata/internal/catalog"
	"github.com/NotSimone/Kobo-Metadata/internal/match"
	"github.com/NotSimone/Kobo-Metadata/internal/transport"
)

const DefaultMaxResults = 5

type Config struct {
	BaseURL string
	Country string
	// SearchPages caps how many result pages are fetched while gathering
	// candidates.
	SearchPages int
	// Workers bounds the concurrent detail fetches. Kept small so the
	// catalog's defenses see a polite client.
	Workers            int
	UpscaleCovers      bool
	StripLeadingZeroes bool
}

type Resolver struct {
	client *transport.Client
	parser *catalog.Parser
	scorer match.Scorer
	cfg    Config
	logger *slog.Logger
}

func New(client *transport.Client, parser *catalog.Parser, cfg Config, logger *slog.Logger) *Resolver {
	if cfg.SearchPages <= 0 {
		cfg.SearchPages = 3
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		client: client,
		parser: parser,
		scorer: match.NewScorer(),
		cfg:    cfg,
		logger: logger,
	}
}

// Options configure one resolve operation. The blacklists are fixed for the
// duration of the call.
type Options struct {
	// Blacklist terms disqualify any candidate whose title contains one,
	// case-insensitively.
	Blacklist []string
	// TagBlacklist terms disqualify a candidate whose detail record carries
	// a matching tag.
	TagBlacklist []string
	MaxResults   int
}

// Resolve returns up to MaxResults fully populated records in rank order. An
// ISBN query bypasses ranking and yields at most one record. Individual
// candidate failures are absorbed; the operation fails only when nothing
// usable remains.
func (r *Resolver) Resolve(ctx context.Context, q catalog.Query, opts Options) ([]catalog.Record, error) {
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}
	blacklist := match.NewBlacklist(opts.Blacklist)
	tagBlacklist := match.NewBlacklist(opts.TagBlacklist)

	requests, err := catalog.BuildRequests(q, catalog.BuildOptions{
		BaseURL:            r.cfg.BaseURL,
		Country:            r.cfg.Country,
		Pages:              r.cfg.SearchPages,
		StripLeadingZeroes: r.cfg.StripLeadingZeroes,
	})
	if err != nil {
		return nil, err
	}

	if requests[0].Kind == catalog.RequestISBN {
		return r.resolveISBN(ctx, q, requests[0], blacklist, tagBlacklist)
	}
	if q.ISBN != "" {
		r.logger.Warn("ignoring identifier that is not a valid isbn", "isbn", q.ISBN)
	}

	candidates, err := r.collectCandidates(ctx, requests, opts.MaxResults)
	if err != nil {
		return nil, err
	}

	ranked := match.Rank(q, candidates, blacklist, opts.MaxResults, r.scorer)
	if len(ranked) == 0 {
		return nil, &NoResultsError{Query: describeQuery(q)}
	}

	records := r.fetchDetails(ctx, ranked, blacklist, tagBlacklist)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if len(records) == 0 {
		return nil, &NoResultsError{Query: describeQuery(q)}
	}
	return records, nil
}

// resolveISBN handles the direct lookup path. The catalog redirects a
// resolving ISBN search straight to the product page; landing on a search
// page means the identifier found nothing.
func (r *Resolver) resolveISBN(ctx context.Context, q catalog.Query, req catalog.Request, blacklist, tagBlacklist match.Blacklist) ([]catalog.Record, error) {
	page, err := r.client.Fetch(ctx, req.URL)
	if err != nil {
		return nil, err
	}
	if page.IsSearchPage() {
		return nil, &NoResultsError{Query: describeQuery(q)}
	}

	detail, err := r.parser.ParseBook(page.Body)
	if err != nil {
		return nil, err
	}
	if blacklist.MatchesTitle(detail.Title) || tagBlacklist.MatchesAnyTag(detail.Tags) {
		return nil, &NoResultsError{Query: describeQuery(q)}
	}

	return []catalog.Record{r.buildRecord(detail, page.FinalURL, 1.0)}, nil
}

// collectCandidates fetches search pages in order until enough candidates
// are gathered or the page budget runs out. Failures past the first page
// degrade to whatever was already collected.
func (r *Resolver) collectCandidates(ctx context.Context, requests []catalog.Request, wanted int) ([]catalog.RawCandidate, error) {
	candidates := make([]catalog.RawCandidate, 0, wanted)
	for i, req := range requests {
		if len(candidates) >= wanted {
			break
		}

		page, err := r.client.Fetch(ctx, req.URL)
		if err != nil {
			if i == 0 || len(candidates) == 0 {
				return nil, err
			}
			r.logger.Warn("search page fetch failed, keeping earlier results", "url", req.URL, "error", err)
			break
		}

		// An ambiguous text search can still redirect to a product page.
		if !page.IsSearchPage() {
			parsed, parseErr := r.parser.ParseBook(page.Body)
			if parseErr != nil {
				return nil, parseErr
			}
			candidates = append(candidates, catalog.RawCandidate{
				ID:           page.FinalURL,
				Title:        parsed.Title,
				Author:       strings.Join(parsed.Authors, " "),
				ThumbnailURL: parsed.CoverSrc,
			})
			break
		}

		parsed, err := r.parser.ParseSearch(page.Body)
		if err != nil {
			if len(candidates) == 0 {
				return nil, err
			}
			r.logger.Warn("search page unparseable, keeping earlier results", "url", req.URL, "error", err)
			break
		}
		if len(parsed) == 0 {
			break
		}
		candidates = append(candidates, parsed...)
	}
	return candidates, nil
}

// fetchDetails runs the detail and cover phases for each ranked candidate in
// a bounded worker pool. Results land in their candidate's pre-assigned rank
// slot so output order reflects rank, not completion order. A failed or
// filtered candidate leaves a nil slot and never disturbs its neighbors.
func (r *Resolver) fetchDetails(ctx context.Context, ranked []catalog.ScoredCandidate, blacklist, tagBlacklist match.Blacklist) []catalog.Record {
	slots := make([]*catalog.Record, len(ranked))

	g, gctx := errgroup.WithContext(ctx)
	workers := r.cfg.Workers
	if workers > len(ranked) {
		workers = len(ranked)
	}
	g.SetLimit(workers)

	for _, candidate := range ranked {
		candidate := candidate
		g.Go(func() error {
			record, err := r.fetchOne(gctx, candidate)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				r.logger.Warn("candidate detail fetch failed", "id", candidate.ID, "error", err)
				return nil
			}
			if blacklist.MatchesTitle(record.Title) {
				r.logger.Debug("dropping candidate, detail title is blacklisted", "id", candidate.ID)
				return nil
			}
			if tagBlacklist.MatchesAnyTag(record.Tags) {
				r.logger.Debug("dropping candidate, tag is blacklisted", "id", candidate.ID)
				return nil
			}
			slots[candidate.Rank] = record
			return nil
		})
	}
	_ = g.Wait()

	if ctx.Err() != nil {
		return nil
	}

	records := make([]catalog.Record, 0, len(slots))
	for _, record := range slots {
		if record != nil {
			records = append(records, *record)
		}
	}
	return records
}

func (r *Resolver) fetchOne(ctx context.Context, candidate catalog.ScoredCandidate) (*catalog.Record, error) {
	productURL := r.absoluteURL(candidate.ID)
	page, err := r.client.Fetch(ctx, productURL)
	if err != nil {
		return nil, err
	}

	detail, err := r.parser.ParseBook(page.Body)
	if err != nil {
		return nil, err
	}

	if detail.CoverSrc == "" {
		detail.CoverSrc = candidate.ThumbnailURL
	}
	record := r.buildRecord(detail, page.FinalURL, candidate.Score)
	return &record, nil
}

func (r *Resolver) buildRecord(detail *catalog.Detail, catalogURL string, score float64) catalog.Record {
	record := catalog.Record{
		Title:       detail.Title,
		Authors:     detail.Authors,
		Synopsis:    detail.Synopsis,
		Publisher:   detail.Publisher,
		PublishedAt: detail.PublishedAt,
		ISBN:        detail.ISBN,
		Language:    detail.Language,
		Series:      detail.Series,
		Tags:        detail.Tags,
		CatalogURL:  catalogURL,
		Score:       score,
	}
	if detail.CoverSrc != "" {
		cover := catalog.ResolveCoverURL(detail.CoverSrc, r.parser.CoverRules(), r.cfg.UpscaleCovers)
		record.CoverURL = &cover
	}
	return record
}

func (r *Resolver) absoluteURL(id string) string {
	if strings.HasPrefix(id, "http://") || strings.HasPrefix(id, "https://") {
		return id
	}
	base := strings.TrimRight(r.cfg.BaseURL, "/")
	if base == "" {
		base = catalog.DefaultBaseURL
	}
	if strings.HasPrefix(id, "/") {
		return base + id
	}
	return base + "/" + id
}

func describeQuery(q catalog.Query) string {
	parts := make([]string, 0, 3)
	if q.ISBN != "" {
		parts = append(parts, fmt.Sprintf("isbn %q", q.ISBN))
	}
	if q.Title != "" {
		parts = append(parts, fmt.Sprintf("title %q", q.Title))
	}
	if len(q.Authors) > 0 {
		parts = append(parts, fmt.Sprintf("authors %q", strings.Join(q.Authors, ", ")))
	}
	if len(parts) == 0 {
		return "empty query"
	}
	return strings.Join(parts, ", ")
}

// IsNoResults is a convenience for callers mapping errors to responses.
func IsNoResults(err error) bool {
	var target *NoResultsError
	return errors.As(err, &target)
}
