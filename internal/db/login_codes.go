package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateLoginCode stores a hashed code for email.
func (db *DB) CreateLoginCode(ctx context.Context, email, codeHash string, expiresAt time.Time) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO login_codes (email, code_hash, expires_at)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		NormalizeEmail(email), codeHash, expiresAt,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create login code: %w", err)
	}
	return id, nil
}

// GetActiveLoginCode returns the newest unconsumed, unexpired code for email,
// or nil, nil when there is none.
func (db *DB) GetActiveLoginCode(ctx context.Context, email string, now time.Time) (*LoginCode, error) {
	var c LoginCode
	err := db.pool.QueryRow(ctx,
		`SELECT id, email, code_hash, attempts, expires_at, consumed_at, created_at
		 FROM login_codes
		 WHERE email = $1 AND consumed_at IS NULL AND expires_at > $2
		 ORDER BY created_at DESC
		 LIMIT 1`,
		NormalizeEmail(email), now,
	).Scan(&c.ID, &c.Email, &c.CodeHash, &c.Attempts, &c.ExpiresAt, &c.ConsumedAt, &c.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get login code: %w", err)
	}
	return &c, nil
}

// IncrementLoginCodeAttempts records a failed verification and returns the
// new attempt count.
func (db *DB) IncrementLoginCodeAttempts(ctx context.Context, id uuid.UUID) (int, error) {
	var attempts int
	err := db.pool.QueryRow(ctx,
		`UPDATE login_codes SET attempts = attempts + 1 WHERE id = $1 RETURNING attempts`, id,
	).Scan(&attempts)
	if err != nil {
		return 0, fmt.Errorf("failed to record login attempt: %w", err)
	}
	return attempts, nil
}

// ConsumeLoginCode marks a code used. It reports false if the code was
// already consumed by a concurrent request.
func (db *DB) ConsumeLoginCode(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	result, err := db.pool.Exec(ctx,
		`UPDATE login_codes SET consumed_at = $1 WHERE id = $2 AND consumed_at IS NULL`, now, id)
	if err != nil {
		return false, fmt.Errorf("failed to consume login code: %w", err)
	}
	return result.RowsAffected() == 1, nil
}

// DeleteExpiredLoginCodes removes codes that expired before cutoff.
func (db *DB) DeleteExpiredLoginCodes(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := db.pool.Exec(ctx, `DELETE FROM login_codes WHERE expires_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired login codes: %w", err)
	}
	return result.RowsAffected(), nil
}
