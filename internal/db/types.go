package db

import (
	"time"

	"github.com/google/uuid"
)

// User is an author account.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoginCode is a hashed one-time sign-in code.
type LoginCode struct {
	ID         uuid.UUID  `json:"id"`
	Email      string     `json:"email"`
	CodeHash   string     `json:"-"`
	Attempts   int        `json:"attempts"`
	ExpiresAt  time.Time  `json:"expires_at"`
	ConsumedAt *time.Time `json:"consumed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Document is a stored assembled document. Data is only loaded by GetDocument.
type Document struct {
	ID          uuid.UUID   `json:"id"`
	UserID      uuid.UUID   `json:"user_id"`
	Title       string      `json:"title"`
	Format      string      `json:"format"`
	ContentType string      `json:"content_type"`
	SectionIDs  []uuid.UUID `json:"section_ids"`
	Pages       int         `json:"pages"`
	Warnings    []string    `json:"warnings,omitempty"`
	SizeBytes   int         `json:"size_bytes"`
	Data        []byte      `json:"-"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Research run statuses
const (
	ResearchStatusCompleted = "completed"
	ResearchStatusFailed    = "failed"
)

// ResearchSource is one fetched page or feed item in a research run.
type ResearchSource struct {
	URL       string `json:"url"`
	Title     string `json:"title,omitempty"`
	Kind      string `json:"kind"`
	Excerpt   string `json:"excerpt,omitempty"`
	Published string `json:"published,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ResearchRun is a persisted research request and its findings.
type ResearchRun struct {
	ID           uuid.UUID        `json:"id"`
	UserID       *uuid.UUID       `json:"user_id,omitempty"`
	Query        string           `json:"query"`
	Status       string           `json:"status"`
	Sources      []ResearchSource `json:"sources"`
	Summary      string           `json:"summary,omitempty"`
	ErrorMessage string           `json:"error_message,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	CompletedAt  *time.Time       `json:"completed_at,omitempty"`
}
