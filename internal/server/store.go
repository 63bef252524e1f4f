package server

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/thewell/content-studio/internal/db"
	"github.com/thewell/content-studio/internal/types"
)

// UserStore persists studio users.
type UserStore interface {
	GetUser(ctx context.Context, id uuid.UUID) (*db.User, error)
	FindOrCreateUser(ctx context.Context, email string) (*db.User, error)
	UpdateUserName(ctx context.Context, id uuid.UUID, name string) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// LoginCodeStore persists one-time login codes.
type LoginCodeStore interface {
	CreateLoginCode(ctx context.Context, email, codeHash string, expiresAt time.Time) (uuid.UUID, error)
	GetActiveLoginCode(ctx context.Context, email string, now time.Time) (*db.LoginCode, error)
	IncrementLoginCodeAttempts(ctx context.Context, id uuid.UUID) (int, error)
	ConsumeLoginCode(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
}

// SectionStore persists content sections. Every method is scoped to the owning user.
type SectionStore interface {
	CreateSection(ctx context.Context, r *types.ContentRecord) error
	GetSection(ctx context.Context, userID, id uuid.UUID) (*types.ContentRecord, error)
	ListSections(ctx context.Context, userID uuid.UUID) ([]types.ContentRecord, error)
	ListSectionsByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]types.ContentRecord, error)
	UpdateSection(ctx context.Context, r *types.ContentRecord) (bool, error)
	DeleteSection(ctx context.Context, userID, id uuid.UUID) (bool, error)
}

// DocumentStore persists generated documents.
type DocumentStore interface {
	SaveDocument(ctx context.Context, d *db.Document) error
	GetDocument(ctx context.Context, userID, id uuid.UUID) (*db.Document, error)
	ListDocuments(ctx context.Context, userID uuid.UUID, limit int) ([]db.Document, error)
}

// ResearchStore persists research runs.
type ResearchStore interface {
	SaveResearchRun(ctx context.Context, run *db.ResearchRun) error
	GetResearchRun(ctx context.Context, id uuid.UUID) (*db.ResearchRun, error)
	ListResearchRuns(ctx context.Context, userID uuid.UUID, limit int) ([]db.ResearchRun, error)
}

// Store is everything the API needs from the database.
type Store interface {
	UserStore
	LoginCodeStore
	SectionStore
	DocumentStore
	ResearchStore
	Ping(ctx context.Context) error
}

var _ Store = (*db.DB)(nil)
