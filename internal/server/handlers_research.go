package server

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/thewell/content-studio/internal/db"
	"github.com/thewell/content-studio/internal/research"
)

// ResearchResponse is a research result with the ID of its stored run.
type ResearchResponse struct {
	RunID string `json:"run_id"`
	*research.Result
}

func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	var req research.Request
	if err := s.decode(r, &req); err != nil {
		s.failure(w, r, err)
		return
	}

	result, runErr := s.researcher.Run(r.Context(), req)
	if _, invalid := runErr.(*research.RequestError); invalid {
		s.failure(w, r, runErr)
		return
	}

	// Failed runs are stored too, so the history shows what was attempted.
	run := research.ToRun(strings.TrimSpace(req.Query), result, runErr, &userID, s.now())
	if err := s.store.SaveResearchRun(r.Context(), run); err != nil {
		if runErr != nil {
			s.failure(w, r, runErr)
			return
		}
		s.failure(w, r, err)
		return
	}
	if runErr != nil {
		s.logger.Warn("research run failed", zap.String("run_id", run.ID.String()), zap.Error(runErr))
		s.failure(w, r, runErr)
		return
	}

	s.jsonResponse(w, http.StatusOK, ResearchResponse{RunID: run.ID.String(), Result: result})
}

func (s *Server) handleListResearch(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	limit, err := queryLimit(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}

	runs, err := s.store.ListResearchRuns(r.Context(), userID, limit)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	if runs == nil {
		runs = []db.ResearchRun{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"runs":  runs,
		"count": len(runs),
	})
}

func (s *Server) handleGetResearch(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		s.failure(w, r, err)
		return
	}

	run, err := s.store.GetResearchRun(r.Context(), id)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	// Runs belonging to someone else are reported as missing.
	if run == nil || run.UserID == nil || *run.UserID != userID {
		s.failure(w, r, &ErrNotFound{Resource: "research run", ID: id.String()})
		return
	}
	s.jsonResponse(w, http.StatusOK, run)
}
