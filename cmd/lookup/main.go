// Command lookup resolves one book's metadata from the command line and
// prints the records as JSON. Useful for trying queries and extraction
// profiles without running the API server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/NotSimone/Kobo-Metadata/internal/catalog"
	"github.com/NotSimone/Kobo-Metadata/internal/catalog/profile"
	"github.com/NotSimone/Kobo-Metadata/internal/config"
	"github.com/NotSimone/Kobo-Metadata/internal/resolver"
	"github.com/NotSimone/Kobo-Metadata/internal/session"
	"github.com/NotSimone/Kobo-Metadata/internal/transport"
)

func main() {
	title := flag.String("title", "", "title text to search for")
	authors := flag.String("authors", "", "comma-separated author names")
	isbn := flag.String("isbn", "", "exact isbn lookup, bypasses ranking")
	maxResults := flag.Int("max", 0, "number of matches to fetch (default from config)")
	blacklist := flag.String("blacklist", "", "comma-separated title blacklist terms")
	tagBlacklist := flag.String("tag-blacklist", "", "comma-separated tag blacklist terms")
	timeout := flag.Duration("timeout", 90*time.Second, "overall resolve timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	profiles, err := profile.LoadFromDir(cfg.ProfilesPath)
	if err != nil {
		slog.Warn("extraction profiles loaded with warnings", "error", err)
	}

	client, err := transport.New(transport.Options{
		Timeout:         time.Duration(cfg.HTTPTimeoutSeconds) * time.Second,
		BrowserFallback: cfg.BrowserSolverEnabled,
		Logger:          logger,
	})
	if err != nil {
		slog.Error("failed to build transport client", "error", err)
		os.Exit(1)
	}

	catalogURL, err := url.Parse(cfg.CatalogBaseURL)
	if err != nil {
		slog.Error("invalid catalog base url", "url", cfg.CatalogBaseURL, "error", err)
		os.Exit(1)
	}

	var store *session.Store
	if cfg.SessionDBPath != "" {
		store, err = session.Open(cfg.SessionDBPath)
		if err != nil {
			slog.Error("failed to open session store", "path", cfg.SessionDBPath, "error", err)
			os.Exit(1)
		}
		defer store.Close()

		if cookies, loadErr := store.Load(catalogURL.Host); loadErr == nil {
			client.SetCookies(catalogURL, cookies)
		}
	}

	parser := catalog.NewParser(profiles, logger)
	metadataResolver := resolver.New(client, parser, resolver.Config{
		BaseURL:            cfg.CatalogBaseURL,
		Country:            cfg.Country,
		SearchPages:        cfg.SearchPages,
		Workers:            cfg.Workers,
		UpscaleCovers:      cfg.UpscaleCovers,
		StripLeadingZeroes: cfg.StripLeadingZeroes,
	}, logger)

	query := catalog.Query{
		Title:   strings.TrimSpace(*title),
		Authors: splitList(*authors),
		ISBN:    strings.TrimSpace(*isbn),
	}

	opts := resolver.Options{
		Blacklist:    append(cfg.Blacklist, splitList(*blacklist)...),
		TagBlacklist: append(cfg.TagBlacklist, splitList(*tagBlacklist)...),
		MaxResults:   *maxResults,
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = cfg.MaxMatches
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	records, err := metadataResolver.Resolve(ctx, query, opts)
	if err != nil {
		slog.Error("resolve failed", "error", err)
		os.Exit(1)
	}

	if store != nil {
		if saveErr := store.Save(catalogURL.Host, client.Cookies(catalogURL)); saveErr != nil {
			slog.Warn("failed to save session cookies", "error", saveErr)
		}
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(records); err != nil {
		slog.Error("failed to encode records", "error", err)
		os.Exit(1)
	}
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
