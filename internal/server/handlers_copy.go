package server

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/thewell/content-studio/internal/chat"
	"github.com/thewell/content-studio/internal/copywriting"
)

const errNoLLM = "no LLM client is configured"

func (s *Server) requireWriter(w http.ResponseWriter, r *http.Request, feature string) bool {
	if s.writer == nil {
		s.failure(w, r, &ErrUnavailable{Feature: feature, Reason: errNoLLM})
		return false
	}
	return true
}

func (s *Server) handleDraftCopy(w http.ResponseWriter, r *http.Request) {
	if !s.requireWriter(w, r, "copy drafting") {
		return
	}
	var req copywriting.DraftRequest
	if err := s.decode(r, &req); err != nil {
		s.failure(w, r, err)
		return
	}

	draft, err := s.writer.DraftCopy(r.Context(), req)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, draft)
}

func (s *Server) handleReviewCopy(w http.ResponseWriter, r *http.Request) {
	if !s.requireWriter(w, r, "compliance review") {
		return
	}
	var req copywriting.ReviewRequest
	if err := s.decode(r, &req); err != nil {
		s.failure(w, r, err)
		return
	}

	review, err := s.writer.ReviewCompliance(r.Context(), req)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, review)
}

func (s *Server) handleDesignSpec(w http.ResponseWriter, r *http.Request) {
	if !s.requireWriter(w, r, "design specs") {
		return
	}
	var req copywriting.DesignRequest
	if err := s.decode(r, &req); err != nil {
		s.failure(w, r, err)
		return
	}

	spec, err := s.writer.DesignSpec(r.Context(), req)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, spec)
}

// sessionKey scopes a client-chosen chat session to its owner.
func sessionKey(userID uuid.UUID, sessionID string) string {
	return userID.String() + ":" + sessionID
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	if s.assistant == nil {
		s.failure(w, r, &ErrUnavailable{Feature: "chat", Reason: errNoLLM})
		return
	}
	var req chat.Request
	if err := s.decode(r, &req); err != nil {
		s.failure(w, r, err)
		return
	}

	reply, err := s.assistant.Reply(r.Context(), sessionKey(userID, req.SessionID), req.Message)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	reply.SessionID = req.SessionID
	s.jsonResponse(w, http.StatusOK, reply)
}

func (s *Server) handleResetChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	if s.assistant == nil {
		s.failure(w, r, &ErrUnavailable{Feature: "chat", Reason: errNoLLM})
		return
	}

	if err := s.assistant.Reset(r.Context(), sessionKey(userID, r.PathValue("session"))); err != nil {
		s.failure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
