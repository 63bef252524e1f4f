package server

import (
	"net/http"
	"strings"

	"github.com/thewell/content-studio/internal/schemas"
	"github.com/thewell/content-studio/internal/types"
)

func (s *Server) handleListSections(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	sections, err := s.store.ListSections(r.Context(), userID)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	if sections == nil {
		sections = []types.ContentRecord{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"sections": sections,
		"count":    len(sections),
	})
}

func (s *Server) handleCreateSection(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	var req types.CreateSectionRequest
	if err := s.decode(r, &req); err != nil {
		s.failure(w, r, err)
		return
	}
	if err := schemas.ValidateContentData(req.SectionType, req.ContentData); err != nil {
		s.failure(w, r, err)
		return
	}

	record := &types.ContentRecord{
		UserID:       userID,
		SectionType:  req.SectionType,
		Title:        strings.TrimSpace(req.Title),
		Body:         types.DecodeSectionBody(req.SectionType, req.ContentData),
		DisplayOrder: req.DisplayOrder,
	}
	if err := s.store.CreateSection(r.Context(), record); err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, record)
}

func (s *Server) handleGetSection(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		s.failure(w, r, err)
		return
	}

	record, err := s.store.GetSection(r.Context(), userID, id)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	if record == nil {
		s.failure(w, r, &ErrNotFound{Resource: "section", ID: id.String()})
		return
	}
	s.jsonResponse(w, http.StatusOK, record)
}

func (s *Server) handleUpdateSection(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		s.failure(w, r, err)
		return
	}

	var req types.UpdateSectionRequest
	if err := s.decode(r, &req); err != nil {
		s.failure(w, r, err)
		return
	}

	record, err := s.store.GetSection(r.Context(), userID, id)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	if record == nil {
		s.failure(w, r, &ErrNotFound{Resource: "section", ID: id.String()})
		return
	}

	if req.SectionType != nil && *req.SectionType != record.SectionType {
		// Re-type the existing body so fields move to the new shape.
		data, err := types.EncodeSectionBody(record.Body)
		if err != nil {
			s.failure(w, r, err)
			return
		}
		record.SectionType = *req.SectionType
		record.Body = types.DecodeSectionBody(record.SectionType, data)
	}
	if req.Title != nil {
		record.Title = strings.TrimSpace(*req.Title)
	}
	if req.DisplayOrder != nil {
		record.DisplayOrder = *req.DisplayOrder
	}
	if len(req.ContentData) > 0 {
		if err := schemas.ValidateContentData(record.SectionType, req.ContentData); err != nil {
			s.failure(w, r, err)
			return
		}
		record.Body = types.DecodeSectionBody(record.SectionType, req.ContentData)
	}

	updated, err := s.store.UpdateSection(r.Context(), record)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	if !updated {
		s.failure(w, r, &ErrNotFound{Resource: "section", ID: id.String()})
		return
	}
	s.jsonResponse(w, http.StatusOK, record)
}

func (s *Server) handleDeleteSection(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		s.failure(w, r, err)
		return
	}

	deleted, err := s.store.DeleteSection(r.Context(), userID, id)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	if !deleted {
		s.failure(w, r, &ErrNotFound{Resource: "section", ID: id.String()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
