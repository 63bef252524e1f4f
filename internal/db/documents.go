package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SaveDocument stores an assembled document and fills in its ID and timestamp.
func (db *DB) SaveDocument(ctx context.Context, d *Document) error {
	sectionIDs, err := json.Marshal(d.SectionIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal section ids: %w", err)
	}
	warnings := d.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	warningsJSON, err := json.Marshal(warnings)
	if err != nil {
		return fmt.Errorf("failed to marshal warnings: %w", err)
	}
	d.SizeBytes = len(d.Data)

	err = db.pool.QueryRow(ctx,
		`INSERT INTO generated_documents
		   (user_id, title, format, content_type, section_ids, pages, warnings, data, size_bytes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at`,
		d.UserID, d.Title, d.Format, d.ContentType, sectionIDs, d.Pages, warningsJSON, d.Data, d.SizeBytes,
	).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

// GetDocument retrieves a user's document including its bytes. It returns
// nil, nil when absent.
func (db *DB) GetDocument(ctx context.Context, userID, id uuid.UUID) (*Document, error) {
	var d Document
	var sectionIDs, warnings []byte
	err := db.pool.QueryRow(ctx,
		`SELECT id, user_id, title, format, content_type, section_ids, pages, warnings, data, size_bytes, created_at
		 FROM generated_documents WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&d.ID, &d.UserID, &d.Title, &d.Format, &d.ContentType, &sectionIDs, &d.Pages, &warnings, &d.Data, &d.SizeBytes, &d.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	if err := decodeDocumentJSON(&d, sectionIDs, warnings); err != nil {
		return nil, err
	}
	return &d, nil
}

// ListDocuments returns a user's documents, newest first, without their bytes.
func (db *DB) ListDocuments(ctx context.Context, userID uuid.UUID, limit int) ([]Document, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, title, format, content_type, section_ids, pages, warnings, size_bytes, created_at
		 FROM generated_documents WHERE user_id = $1
		 ORDER BY created_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var d Document
		var sectionIDs, warnings []byte
		if err := rows.Scan(&d.ID, &d.UserID, &d.Title, &d.Format, &d.ContentType, &sectionIDs, &d.Pages, &warnings, &d.SizeBytes, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		if err := decodeDocumentJSON(&d, sectionIDs, warnings); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}
	return docs, nil
}

func decodeDocumentJSON(d *Document, sectionIDs, warnings []byte) error {
	if len(sectionIDs) > 0 {
		if err := json.Unmarshal(sectionIDs, &d.SectionIDs); err != nil {
			return fmt.Errorf("failed to decode section ids: %w", err)
		}
	}
	if len(warnings) > 0 {
		if err := json.Unmarshal(warnings, &d.Warnings); err != nil {
			return fmt.Errorf("failed to decode warnings: %w", err)
		}
	}
	return nil
}
