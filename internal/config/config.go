package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	AppName     string
	Port        string
	LogLevel    slog.Level

	// Catalog settings.
	CatalogBaseURL     string
	Country            string
	SearchPages        int
	MaxMatches         int
	Workers            int
	UpscaleCovers      bool
	StripLeadingZeroes bool
	Blacklist          []string
	TagBlacklist       []string
	ProfilesPath       string

	// Transport settings.
	HTTPTimeoutSeconds   int
	BrowserSolverEnabled bool

	// SessionDBPath persists transport cookies across runs; empty disables
	// persistence.
	SessionDBPath       string
	SessionPruneMinutes int
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Environment:          getEnv("APP_ENV", "development"),
		AppName:              getEnv("APP_NAME", "kobo-metadata"),
		Port:                 getEnv("APP_PORT", "8080"),
		CatalogBaseURL:       getEnv("KOBO_BASE_URL", "https://www.kobo.com"),
		Country:              getEnv("KOBO_COUNTRY", "us"),
		SearchPages:          getEnvAsInt("SEARCH_PAGES", 3),
		MaxMatches:           getEnvAsInt("MAX_MATCHES", 5),
		Workers:              getEnvAsInt("WORKERS", 4),
		UpscaleCovers:        getEnvAsBool("UPSCALE_COVERS", false),
		StripLeadingZeroes:   getEnvAsBool("STRIP_LEADING_ZEROES", false),
		Blacklist:            getEnvAsList("TITLE_BLACKLIST"),
		TagBlacklist:         getEnvAsList("TAG_BLACKLIST"),
		ProfilesPath:         getEnv("PROFILES_PATH", ""),
		HTTPTimeoutSeconds:   getEnvAsInt("HTTP_TIMEOUT_SECONDS", 20),
		BrowserSolverEnabled: getEnvAsBool("BROWSER_SOLVER_ENABLED", false),
		SessionDBPath:        getEnv("SESSION_DB_PATH", ""),
		SessionPruneMinutes:  getEnvAsInt("SESSION_PRUNE_MINUTES", 60),
	}

	if cfg.SearchPages <= 0 {
		cfg.SearchPages = 3
	}
	if cfg.MaxMatches <= 0 {
		cfg.MaxMatches = 5
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.SessionPruneMinutes <= 0 {
		cfg.SessionPruneMinutes = 60
	}

	level, err := parseLogLevel(getEnv("LOG_LEVEL", "INFO"))
	if err != nil {
		return Config{}, err
	}
	cfg.LogLevel = level

	return cfg, nil
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch raw {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARN":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q, expected DEBUG|INFO|WARN|ERROR", raw)
	}
}

func getEnv(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvAsBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// getEnvAsList splits a comma-separated value, dropping empty items.
func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
