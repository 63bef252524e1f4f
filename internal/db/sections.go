package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/thewell/content-studio/internal/types"
)

const sectionColumns = `id, user_id, section_type, title, content_data, display_order, created_at, updated_at`

func scanSection(row pgx.Row) (*types.ContentRecord, error) {
	var r types.ContentRecord
	var raw []byte
	if err := row.Scan(&r.ID, &r.UserID, &r.SectionType, &r.Title, &raw, &r.DisplayOrder, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.Body = types.DecodeSectionBody(r.SectionType, raw)
	return &r, nil
}

func collectSections(rows pgx.Rows) ([]types.ContentRecord, error) {
	defer rows.Close()
	records := []types.ContentRecord{}
	for rows.Next() {
		r, err := scanSection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan section: %w", err)
		}
		records = append(records, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sections: %w", err)
	}
	return records, nil
}

// CreateSection inserts a section for r.UserID and fills in its ID and timestamps.
func (db *DB) CreateSection(ctx context.Context, r *types.ContentRecord) error {
	data, err := types.EncodeSectionBody(r.Body)
	if err != nil {
		return fmt.Errorf("failed to encode section body: %w", err)
	}
	err = db.pool.QueryRow(ctx,
		`INSERT INTO content_sections (user_id, section_type, title, content_data, display_order)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		r.UserID, r.SectionType, r.Title, []byte(data), r.DisplayOrder,
	).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create section: %w", err)
	}
	return nil
}

// GetSection retrieves one of a user's sections. It returns nil, nil when the
// section does not exist or belongs to someone else.
func (db *DB) GetSection(ctx context.Context, userID, id uuid.UUID) (*types.ContentRecord, error) {
	r, err := scanSection(db.pool.QueryRow(ctx,
		`SELECT `+sectionColumns+` FROM content_sections WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get section: %w", err)
	}
	return r, nil
}

// ListSections returns a user's sections by display order, then creation time.
func (db *DB) ListSections(ctx context.Context, userID uuid.UUID) ([]types.ContentRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+sectionColumns+` FROM content_sections
		 WHERE user_id = $1
		 ORDER BY display_order, created_at`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}
	return collectSections(rows)
}

// ListSectionsByIDs returns the subset of ids owned by the user, in fetch
// order. Callers compare lengths to detect missing sections.
func (db *DB) ListSectionsByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]types.ContentRecord, error) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}
	rows, err := db.pool.Query(ctx,
		`SELECT `+sectionColumns+` FROM content_sections
		 WHERE user_id = $1 AND id = ANY($2::uuid[])
		 ORDER BY display_order, created_at`,
		userID, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to list sections by id: %w", err)
	}
	return collectSections(rows)
}

// UpdateSection overwrites a section's mutable fields. It reports false when
// the section does not exist for the user.
func (db *DB) UpdateSection(ctx context.Context, r *types.ContentRecord) (bool, error) {
	data, err := types.EncodeSectionBody(r.Body)
	if err != nil {
		return false, fmt.Errorf("failed to encode section body: %w", err)
	}
	err = db.pool.QueryRow(ctx,
		`UPDATE content_sections
		 SET section_type = $1, title = $2, content_data = $3, display_order = $4, updated_at = NOW()
		 WHERE id = $5 AND user_id = $6
		 RETURNING created_at, updated_at`,
		r.SectionType, r.Title, []byte(data), r.DisplayOrder, r.ID, r.UserID,
	).Scan(&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("failed to update section: %w", err)
	}
	return true, nil
}

// DeleteSection removes a section. It reports false when nothing was deleted.
func (db *DB) DeleteSection(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	result, err := db.pool.Exec(ctx,
		`DELETE FROM content_sections WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete section: %w", err)
	}
	return result.RowsAffected() > 0, nil
}
