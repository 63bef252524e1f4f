// Package research - persist.go converts results to stored research runs.
package research

import (
	"time"

	"github.com/google/uuid"

	"github.com/thewell/content-studio/internal/db"
)

// ToRun converts a result into a research run record ready to save. A nil
// runErr marks the run completed; otherwise it is stored as failed.
func ToRun(query string, result *Result, runErr error, userID *uuid.UUID, now time.Time) *db.ResearchRun {
	run := &db.ResearchRun{
		UserID:    userID,
		Query:     query,
		Status:    db.ResearchStatusCompleted,
		Sources:   []db.ResearchSource{},
		CreatedAt: now,
	}
	completed := now
	run.CompletedAt = &completed

	if runErr != nil {
		run.Status = db.ResearchStatusFailed
		run.ErrorMessage = runErr.Error()
	}
	if result == nil {
		return run
	}

	run.Query = result.Query
	run.Summary = result.Summary
	for _, src := range result.Sources {
		run.Sources = append(run.Sources, db.ResearchSource{
			URL:       src.URL,
			Title:     src.Title,
			Kind:      src.Kind,
			Excerpt:   src.Excerpt,
			Published: src.Published,
			Error:     src.Error,
		})
	}
	return run
}
