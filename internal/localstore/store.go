// Package localstore keeps content sections in a local SQLite file so the CLI
// can assemble documents without a Postgres server.
package localstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/thewell/content-studio/internal/types"
)

// Store wraps a SQLite database connection.
type Store struct {
	conn *sql.DB
	path string
}

// Open creates or opens a store at path and brings its schema up to date.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single connection serializes writers.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}
	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	return &Store{conn: conn, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "create sections",
		SQL: `CREATE TABLE sections (
			id            TEXT PRIMARY KEY,
			section_type  TEXT NOT NULL,
			title         TEXT NOT NULL,
			content_data  TEXT NOT NULL DEFAULT '{}',
			display_order INTEGER NOT NULL DEFAULT 0,
			created_at    TEXT NOT NULL,
			updated_at    TEXT NOT NULL
		);
		CREATE INDEX idx_sections_order ON sections (display_order, created_at);`,
	},
}

// migrate applies pending migrations, tracking progress in PRAGMA user_version.
func migrate(conn *sql.DB) error {
	var current int
	if err := conn.QueryRow("PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		tx, err := conn.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}
		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.Version)); err != nil {
			tx.Rollback()
			return fmt.Errorf("stamping version %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}
	return nil
}

// SaveSection inserts or replaces a section. A nil ID is assigned a new one.
func (s *Store) SaveSection(ctx context.Context, r *types.ContentRecord) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now

	data, err := types.EncodeSectionBody(r.Body)
	if err != nil {
		return fmt.Errorf("encoding section %s: %w", r.ID, err)
	}
	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO sections (id, section_type, title, content_data, display_order, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   section_type = excluded.section_type,
		   title = excluded.title,
		   content_data = excluded.content_data,
		   display_order = excluded.display_order,
		   updated_at = excluded.updated_at`,
		r.ID.String(), string(r.SectionType), r.Title, string(data), r.DisplayOrder,
		r.CreatedAt.Format(time.RFC3339Nano), r.UpdatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("saving section %s: %w", r.ID, err)
	}
	return nil
}

const selectSections = `SELECT id, section_type, title, content_data, display_order, created_at, updated_at FROM sections`

// ListSections returns every section by display order, then creation time.
func (s *Store) ListSections(ctx context.Context) ([]types.ContentRecord, error) {
	rows, err := s.conn.QueryContext(ctx, selectSections+` ORDER BY display_order, created_at`)
	if err != nil {
		return nil, fmt.Errorf("listing sections: %w", err)
	}
	return scanSections(rows)
}

// GetSections returns the sections with the given IDs that exist.
func (s *Store) GetSections(ctx context.Context, ids []uuid.UUID) ([]types.ContentRecord, error) {
	if len(ids) == 0 {
		return []types.ContentRecord{}, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id.String()
	}
	rows, err := s.conn.QueryContext(ctx,
		selectSections+` WHERE id IN (`+strings.Join(placeholders, ", ")+`) ORDER BY display_order, created_at`, args...)
	if err != nil {
		return nil, fmt.Errorf("getting sections: %w", err)
	}
	return scanSections(rows)
}

// DeleteSection removes a section and reports whether it existed.
func (s *Store) DeleteSection(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := s.conn.ExecContext(ctx, `DELETE FROM sections WHERE id = ?`, id.String())
	if err != nil {
		return false, fmt.Errorf("deleting section %s: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting section %s: %w", id, err)
	}
	return n > 0, nil
}

func scanSections(rows *sql.Rows) ([]types.ContentRecord, error) {
	defer rows.Close()
	records := []types.ContentRecord{}
	for rows.Next() {
		var (
			r                    types.ContentRecord
			id, sectionType      string
			data                 string
			createdAt, updatedAt string
		)
		if err := rows.Scan(&id, &sectionType, &r.Title, &data, &r.DisplayOrder, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning section: %w", err)
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("scanning section id %q: %w", id, err)
		}
		r.ID = parsed
		r.SectionType = types.SectionType(sectionType)
		r.Body = types.DecodeSectionBody(r.SectionType, []byte(data))
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		r.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sections: %w", err)
	}
	return records, nil
}
