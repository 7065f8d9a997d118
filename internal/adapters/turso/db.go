package turso

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/tursodatabase/go-libsql"
)

// Config holds history database configuration.
type Config struct {
	URL       string
	AuthToken string
}

// Enabled reports whether a history database is configured.
func (c Config) Enabled() bool {
	return c.URL != ""
}

// DSN returns the driver connection string, adding the auth token for
// remote databases.
func (c Config) DSN() string {
	if c.AuthToken == "" || strings.HasPrefix(c.URL, "file:") {
		return c.URL
	}
	sep := "?"
	if strings.Contains(c.URL, "?") {
		sep = "&"
	}
	return c.URL + sep + "authToken=" + url.QueryEscape(c.AuthToken)
}

// DB wraps the libsql connection.
type DB struct {
	*sql.DB
}

// NewDB opens and pings the history database.
func NewDB(ctx context.Context, cfg Config) (*DB, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("history database URL not configured")
	}

	db, err := sql.Open("libsql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}
