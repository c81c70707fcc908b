// Package session persists the transport client's cookie state across
// process runs, so a solved challenge clearance survives restarts and the
// catalog's defenses are not re-triggered on every start. The sqlite schema
// is an implementation detail, not a compatibility surface.
package session

import (
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func Open(sqlitePath string) (*Store, error) {
	dir := filepath.Dir(sqlitePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}

	db, err := sql.Open("sqlite", sqlitePath)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}

	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set sqlite WAL: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply session schema: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping session db: %w", err)
	}

	return &Store{db: db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS cookies (
    host       TEXT NOT NULL,
    name       TEXT NOT NULL,
    value      TEXT NOT NULL,
    path       TEXT NOT NULL DEFAULT '/',
    expires_at INTEGER,
    updated_at INTEGER NOT NULL,
    PRIMARY KEY (host, name, path)
);
`

func (s *Store) Close() error {
	return s.db.Close()
}

// Save upserts the current cookies for host. Session cookies (no expiry) are
// stored with a NULL expires_at and kept until replaced.
func (s *Store) Save(host string, cookies []*http.Cookie) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin cookie save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Unix()
	for _, cookie := range cookies {
		path := cookie.Path
		if path == "" {
			path = "/"
		}
		var expires *int64
		if !cookie.Expires.IsZero() {
			unix := cookie.Expires.UTC().Unix()
			expires = &unix
		}

		_, err := tx.Exec(`
INSERT INTO cookies (host, name, value, path, expires_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (host, name, path) DO UPDATE SET
    value = excluded.value,
    expires_at = excluded.expires_at,
    updated_at = excluded.updated_at`,
			host, cookie.Name, cookie.Value, path, expires, now)
		if err != nil {
			return fmt.Errorf("save cookie %q: %w", cookie.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cookie save: %w", err)
	}
	return nil
}

// Load returns the unexpired cookies stored for host.
func (s *Store) Load(host string) ([]*http.Cookie, error) {
	rows, err := s.db.Query(`
SELECT name, value, path, expires_at
FROM cookies
WHERE host = ? AND (expires_at IS NULL OR expires_at > ?)
ORDER BY name`, host, time.Now().UTC().Unix())
	if err != nil {
		return nil, fmt.Errorf("load cookies: %w", err)
	}
	defer rows.Close()

	cookies := make([]*http.Cookie, 0, 8)
	for rows.Next() {
		var cookie http.Cookie
		var expires sql.NullInt64
		if err := rows.Scan(&cookie.Name, &cookie.Value, &cookie.Path, &expires); err != nil {
			return nil, fmt.Errorf("scan cookie: %w", err)
		}
		if expires.Valid {
			cookie.Expires = time.Unix(expires.Int64, 0).UTC()
		}
		cookies = append(cookies, &cookie)
	}
	return cookies, rows.Err()
}

// PruneExpired deletes cookies whose expiry has passed and returns how many
// rows went away.
func (s *Store) PruneExpired(now time.Time) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM cookies WHERE expires_at IS NOT NULL AND expires_at <= ?`, now.UTC().Unix())
	if err != nil {
		return 0, fmt.Errorf("prune cookies: %w", err)
	}
	return result.RowsAffected()
}
