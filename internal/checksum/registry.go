package checksum

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rmarsh/ziptrial/internal/archive"
)

//go:embed schema.sql
var schemaSQL string

// ErrDuplicateName is returned by Record when a second source maps to an
// already-recorded relative name within one trial.
var ErrDuplicateName = errors.New("checksum: duplicate entry name")

// ErrNotRecorded is returned by Verify and Rename for names the registry
// has never seen (or no longer holds).
var ErrNotRecorded = errors.New("checksum: name not recorded")

// Mismatch reports a post-round-trip digest that differs from the one
// recorded at creation time.
type Mismatch struct {
	Name     string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (m *Mismatch) Error() string {
	return fmt.Sprintf("checksum mismatch for %q: expected %s, got %s", m.Name, m.Expected, m.Actual)
}

// Registry stores one digest per entry name for the duration of a trial.
type Registry struct {
	db *sql.DB
}

// Open creates a registry backed by the SQLite database at path. Use
// ":memory:" for the transient per-trial registry; pass a file path to
// keep it as a post-mortem artifact.
func Open(path string) (*Registry, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to registry database: %w", err)
	}

	// SQLite allows one writer; a single pooled connection avoids
	// SQLITE_BUSY and keeps :memory: databases coherent.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply registry schema: %w", err)
	}

	return &Registry{db: db}, nil
}

// Close releases the underlying database.
func (r *Registry) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Record streams src once, computing its digest, and stores it under the
// canonical form of name. Recording the same name twice returns
// ErrDuplicateName: a collision is a trial-construction bug, not a
// runtime condition to tolerate.
func (r *Registry) Record(ctx context.Context, name string, src archive.ContentSource) error {
	canonical := CanonicalName(name)

	rc, err := src.Open()
	if err != nil {
		return fmt.Errorf("record %q: open source: %w", canonical, err)
	}
	digest, n, err := Digest(rc)
	closeErr := rc.Close()
	if err != nil {
		return fmt.Errorf("record %q: %w", canonical, err)
	}
	if closeErr != nil {
		return fmt.Errorf("record %q: close source: %w", canonical, closeErr)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO checksums (name, digest, size) VALUES (?, ?, ?)`,
		canonical, digest, n,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %q", ErrDuplicateName, canonical)
		}
		return fmt.Errorf("record %q: %w", canonical, err)
	}
	return nil
}

// Verify recomputes the digest of the post-round-trip content and
// compares for exact equality with the recorded value. A difference is
// returned as *Mismatch with the offending name and both digests.
func (r *Registry) Verify(ctx context.Context, name string, content io.Reader) error {
	canonical := CanonicalName(name)

	expected, err := r.Expected(ctx, canonical)
	if err != nil {
		return err
	}

	actual, _, err := Digest(content)
	if err != nil {
		return fmt.Errorf("verify %q: %w", canonical, err)
	}
	if actual != expected {
		return &Mismatch{Name: canonical, Expected: expected, Actual: actual}
	}
	return nil
}

// Expected returns the digest recorded for a name.
func (r *Registry) Expected(ctx context.Context, name string) (string, error) {
	canonical := CanonicalName(name)
	var digest string
	err := r.db.QueryRowContext(ctx,
		`SELECT digest FROM checksums WHERE name = ?`, canonical,
	).Scan(&digest)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %q", ErrNotRecorded, canonical)
	}
	if err != nil {
		return "", fmt.Errorf("expected %q: %w", canonical, err)
	}
	return digest, nil
}

// Rename moves the digest recorded under oldName to newName, so a
// renamed entry's extracted content still verifies against the digest of
// its original content.
func (r *Registry) Rename(ctx context.Context, oldName, newName string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE checksums SET name = ? WHERE name = ?`,
		CanonicalName(newName), CanonicalName(oldName),
	)
	if err != nil {
		return fmt.Errorf("rename %q: %w", oldName, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rename %q: %w", oldName, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrNotRecorded, CanonicalName(oldName))
	}
	return nil
}

// Remove drops one name from the registry.
func (r *Registry) Remove(ctx context.Context, name string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM checksums WHERE name = ?`, CanonicalName(name),
	)
	if err != nil {
		return fmt.Errorf("remove %q: %w", name, err)
	}
	return nil
}

// RemoveMatching drops every name matching the glob pattern (path.Match
// against the base name, so "*.dat" reaches nested entries) and returns
// how many were removed. Mirrors archive.Archive.RemoveMatching so
// registry and archive stay in step through an update pass.
func (r *Registry) RemoveMatching(ctx context.Context, glob string) (int, error) {
	names, err := r.Names(ctx)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, name := range names {
		ok, err := path.Match(glob, path.Base(name))
		if err != nil {
			return removed, fmt.Errorf("remove matching %q: %w", glob, err)
		}
		if !ok {
			continue
		}
		if err := r.Remove(ctx, name); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// Names returns every recorded name in lexical order.
func (r *Registry) Names(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM checksums ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list names: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list names: %w", err)
	}
	return names, nil
}

// Len returns the number of recorded entries.
func (r *Registry) Len(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM checksums`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// Size returns the recorded byte size for a name.
func (r *Registry) Size(ctx context.Context, name string) (int64, error) {
	var size int64
	err := r.db.QueryRowContext(ctx,
		`SELECT size FROM checksums WHERE name = ?`, CanonicalName(name),
	).Scan(&size)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %q", ErrNotRecorded, CanonicalName(name))
	}
	if err != nil {
		return 0, fmt.Errorf("size %q: %w", name, err)
	}
	return size, nil
}
