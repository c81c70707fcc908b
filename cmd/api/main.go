package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NotSimone/Kobo-Metadata/internal/catalog"
	"github.com/NotSimone/Kobo-Metadata/internal/catalog/profile"
	"github.com/NotSimone/Kobo-Metadata/internal/config"
	apihttp "github.com/NotSimone/Kobo-Metadata/internal/http"
	"github.com/NotSimone/Kobo-Metadata/internal/resolver"
	"github.com/NotSimone/Kobo-Metadata/internal/session"
	"github.com/NotSimone/Kobo-Metadata/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})
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
	var janitor *session.Janitor
	janitorCtx, janitorCancel := context.WithCancel(context.Background())
	defer janitorCancel()
	if cfg.SessionDBPath != "" {
		store, err = session.Open(cfg.SessionDBPath)
		if err != nil {
			slog.Error("failed to open session store", "path", cfg.SessionDBPath, "error", err)
			os.Exit(1)
		}
		defer store.Close()

		cookies, loadErr := store.Load(catalogURL.Host)
		if loadErr != nil {
			slog.Warn("failed to load saved session cookies", "error", loadErr)
		} else if len(cookies) > 0 {
			client.SetCookies(catalogURL, cookies)
			slog.Info("restored session cookies", "count", len(cookies))
		}

		janitor = session.NewJanitor(store, time.Duration(cfg.SessionPruneMinutes)*time.Minute, logger)
		janitor.Start(janitorCtx)
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

	app := apihttp.NewServer(cfg, metadataResolver)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server stopped", "error", err)
		}
	}()

	slog.Info("api started", "port", cfg.Port, "env", cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slog.Info("shutting down server")
	if store != nil {
		if err := store.Save(catalogURL.Host, client.Cookies(catalogURL)); err != nil {
			slog.Warn("failed to save session cookies", "error", err)
		}
		janitorCancel()
		janitor.StopWait(2 * time.Second)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
