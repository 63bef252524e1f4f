package server

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/thewell/content-studio/internal/server/middleware"
)

// UpdateMeRequest edits the caller's profile.
type UpdateMeRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// userID returns the authenticated caller or writes a 401.
func (s *Server) userID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, false
	}
	return userID, true
}

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	user, err := s.userService.GetUser(r.Context(), userID)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, user)
}

func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	var req UpdateMeRequest
	if err := s.decode(r, &req); err != nil {
		s.failure(w, r, err)
		return
	}

	user, err := s.userService.UpdateName(r.Context(), userID, strings.TrimSpace(req.Name))
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, user)
}

func (s *Server) handleDeleteMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	if err := s.userService.DeleteUser(r.Context(), userID); err != nil {
		s.failure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// pathID parses a UUID path parameter.
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: name, Message: "must be a UUID"}
	}
	return id, nil
}
