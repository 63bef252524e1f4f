package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const researchColumns = `id, user_id, query, status, sources, summary, error_message, created_at, completed_at`

// SaveResearchRun stores a finished research run and fills in its ID and
// creation time.
func (db *DB) SaveResearchRun(ctx context.Context, run *ResearchRun) error {
	sources := run.Sources
	if sources == nil {
		sources = []ResearchSource{}
	}
	sourcesJSON, err := json.Marshal(sources)
	if err != nil {
		return fmt.Errorf("failed to marshal research sources: %w", err)
	}

	err = db.pool.QueryRow(ctx,
		`INSERT INTO research_runs (user_id, query, status, sources, summary, error_message, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		run.UserID, run.Query, run.Status, sourcesJSON,
		nullIfEmpty(run.Summary), nullIfEmpty(run.ErrorMessage), run.CompletedAt,
	).Scan(&run.ID, &run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save research run: %w", err)
	}
	return nil
}

func scanResearchRun(row pgx.Row) (*ResearchRun, error) {
	var run ResearchRun
	var sources []byte
	var summary, errMsg *string
	if err := row.Scan(&run.ID, &run.UserID, &run.Query, &run.Status, &sources,
		&summary, &errMsg, &run.CreatedAt, &run.CompletedAt); err != nil {
		return nil, err
	}
	run.Summary = derefString(summary)
	run.ErrorMessage = derefString(errMsg)
	if len(sources) > 0 {
		if err := json.Unmarshal(sources, &run.Sources); err != nil {
			return nil, fmt.Errorf("failed to decode research sources: %w", err)
		}
	}
	return &run, nil
}

// GetResearchRun retrieves a research run by ID. It returns nil, nil when absent.
func (db *DB) GetResearchRun(ctx context.Context, id uuid.UUID) (*ResearchRun, error) {
	run, err := scanResearchRun(db.pool.QueryRow(ctx,
		`SELECT `+researchColumns+` FROM research_runs WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get research run: %w", err)
	}
	return run, nil
}

// ListResearchRuns returns a user's research runs, newest first.
func (db *DB) ListResearchRuns(ctx context.Context, userID uuid.UUID, limit int) ([]ResearchRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.pool.Query(ctx,
		`SELECT `+researchColumns+` FROM research_runs
		 WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list research runs: %w", err)
	}
	defer rows.Close()

	runs := []ResearchRun{}
	for rows.Next() {
		run, err := scanResearchRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan research run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate research runs: %w", err)
	}
	return runs, nil
}
