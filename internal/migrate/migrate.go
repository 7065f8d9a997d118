// Package migrate applies the embedded history schema to a libsql database.
package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/emiliopalmerini/factoryvision/migrations"
)

// Migration is one numbered schema step read from NNN_name.up.sql and its
// optional NNN_name.down.sql.
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// Status compares the applied schema with the embedded one.
type Status struct {
	Current int
	Latest  int
}

func (s Status) Pending() int {
	if s.Latest > s.Current {
		return s.Latest - s.Current
	}
	return 0
}

// Runner applies migrations one transaction at a time, so a failed step
// leaves the previous version in place.
type Runner struct {
	db    *sql.DB
	out   io.Writer
	steps []Migration
}

// New loads the embedded migrations and ensures the version table exists.
// Progress lines go to out; pass io.Discard to silence them.
func New(ctx context.Context, db *sql.DB, out io.Writer) (*Runner, error) {
	steps, err := load(migrations.FS)
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_versions (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL
		)`); err != nil {
		return nil, fmt.Errorf("failed to create version table: %w", err)
	}
	return &Runner{db: db, out: out, steps: steps}, nil
}

// RunAll applies every pending migration silently.
func RunAll(ctx context.Context, db *sql.DB) error {
	r, err := New(ctx, db, io.Discard)
	if err != nil {
		return err
	}
	_, err = r.Up(ctx)
	return err
}

func (r *Runner) Status(ctx context.Context) (Status, error) {
	var s Status
	if err := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_versions`).Scan(&s.Current); err != nil {
		return s, fmt.Errorf("failed to read schema version: %w", err)
	}
	if n := len(r.steps); n > 0 {
		s.Latest = r.steps[n-1].Version
	}
	return s, nil
}

// Up applies pending migrations in order and returns how many ran.
func (r *Runner) Up(ctx context.Context) (int, error) {
	st, err := r.Status(ctx)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, m := range r.steps {
		if m.Version <= st.Current {
			continue
		}
		fmt.Fprintf(r.out, "  up %03d_%s\n", m.Version, m.Name)
		if err := r.apply(ctx, m, m.Up, true); err != nil {
			return applied, err
		}
		applied++
	}
	return applied, nil
}

// Down rolls back every applied migration above target, newest first.
func (r *Runner) Down(ctx context.Context, target int) (int, error) {
	st, err := r.Status(ctx)
	if err != nil {
		return 0, err
	}

	reverted := 0
	for i := len(r.steps) - 1; i >= 0; i-- {
		m := r.steps[i]
		if m.Version > st.Current || m.Version <= target {
			continue
		}
		if m.Down == "" {
			return reverted, fmt.Errorf("migration %03d_%s has no down script", m.Version, m.Name)
		}
		fmt.Fprintf(r.out, "  down %03d_%s\n", m.Version, m.Name)
		if err := r.apply(ctx, m, m.Down, false); err != nil {
			return reverted, err
		}
		reverted++
	}
	return reverted, nil
}

func (r *Runner) apply(ctx context.Context, m Migration, script string, up bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration %d: %w", m.Version, err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range strings.Split(script, ";") {
		if stmt = strings.TrimSpace(stmt); stmt == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %03d_%s: %w", m.Version, m.Name, err)
		}
	}

	if up {
		_, err = tx.ExecContext(ctx, `INSERT INTO schema_versions (version, applied_at) VALUES (?, ?)`,
			m.Version, time.Now().UTC().Format(time.RFC3339))
	} else {
		_, err = tx.ExecContext(ctx, `DELETE FROM schema_versions WHERE version = ?`, m.Version)
	}
	if err != nil {
		return fmt.Errorf("failed to record version %d: %w", m.Version, err)
	}
	return tx.Commit()
}

func load(fsys fs.FS) ([]Migration, error) {
	ups, err := fs.Glob(fsys, "*.up.sql")
	if err != nil {
		return nil, err
	}

	steps := make([]Migration, 0, len(ups))
	for _, file := range ups {
		base := strings.TrimSuffix(file, ".up.sql")
		num, name, ok := strings.Cut(base, "_")
		version, err := strconv.Atoi(num)
		if !ok || err != nil || version <= 0 {
			return nil, fmt.Errorf("malformed migration file name %q", file)
		}

		up, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, err
		}
		down, err := fs.ReadFile(fsys, base+".down.sql")
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		steps = append(steps, Migration{Version: version, Name: name, Up: string(up), Down: string(down)})
	}

	sort.Slice(steps, func(i, j int) bool { return steps[i].Version < steps[j].Version })
	for i := 1; i < len(steps); i++ {
		if steps[i].Version == steps[i-1].Version {
			return nil, fmt.Errorf("duplicate migration version %d", steps[i].Version)
		}
	}
	return steps, nil
}
