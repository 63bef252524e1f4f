package server

import (
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/thewell/content-studio/internal/assembly"
	"github.com/thewell/content-studio/internal/db"
	"github.com/thewell/content-studio/internal/types"
)

// CreateDocumentRequest assembles sections into a document. An empty
// section list means every section the caller owns.
type CreateDocumentRequest struct {
	SectionIDs []uuid.UUID `json:"section_ids,omitempty" validate:"max=100"`
	Format     string      `json:"format" validate:"required"`
	Title      string      `json:"title,omitempty" validate:"max=300"`
}

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	var req CreateDocumentRequest
	if err := s.decode(r, &req); err != nil {
		s.failure(w, r, err)
		return
	}
	format, err := assembly.ParseFormat(req.Format)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	if format == assembly.FormatPDF && !s.canPrint {
		s.failure(w, r, &ErrUnavailable{Feature: "pdf output", Reason: "no browser is configured"})
		return
	}

	records, err := s.sectionsFor(r, userID, req.SectionIDs)
	if err != nil {
		s.failure(w, r, err)
		return
	}

	doc, err := s.assembler.Assemble(r.Context(), records, format, req.Title)
	if err != nil {
		s.failure(w, r, err)
		return
	}

	stored := &db.Document{
		UserID:      userID,
		Title:       doc.Title,
		Format:      string(doc.Format),
		ContentType: doc.ContentType(),
		SectionIDs:  recordIDs(records),
		Pages:       doc.Pages,
		Warnings:    doc.Warnings,
		Data:        doc.Data,
	}
	if err := s.store.SaveDocument(r.Context(), stored); err != nil {
		s.failure(w, r, err)
		return
	}

	s.writeDocument(w, stored, doc.Filename(), http.StatusCreated)
}

// sectionsFor loads the requested sections, or all of them when ids is
// empty. Any id the caller does not own is reported as not found.
func (s *Server) sectionsFor(r *http.Request, userID uuid.UUID, ids []uuid.UUID) ([]types.ContentRecord, error) {
	if len(ids) == 0 {
		return s.store.ListSections(r.Context(), userID)
	}

	unique := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	records, err := s.store.ListSectionsByIDs(r.Context(), userID, unique)
	if err != nil {
		return nil, err
	}
	if len(records) != len(unique) {
		found := make(map[uuid.UUID]bool, len(records))
		for _, rec := range records {
			found[rec.ID] = true
		}
		var missing []string
		for _, id := range unique {
			if !found[id] {
				missing = append(missing, id.String())
			}
		}
		return nil, &ErrNotFound{Resource: "section", ID: strings.Join(missing, ", ")}
	}
	return records, nil
}

// recordIDs lists record IDs in the order they appear in the document.
func recordIDs(records []types.ContentRecord) []uuid.UUID {
	sorted := assembly.SortRecords(records)
	ids := make([]uuid.UUID, len(sorted))
	for i, rec := range sorted {
		ids[i] = rec.ID
	}
	return ids
}

func (s *Server) writeDocument(w http.ResponseWriter, d *db.Document, filename string, status int) {
	h := w.Header()
	h.Set("Content-Type", d.ContentType)
	h.Set("Content-Length", strconv.Itoa(len(d.Data)))
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	h.Set("X-Document-ID", d.ID.String())
	h.Set("X-Document-Pages", strconv.Itoa(d.Pages))
	if len(d.Warnings) > 0 {
		h.Set("X-Document-Warnings", strconv.Itoa(len(d.Warnings)))
	}
	w.WriteHeader(status)
	_, _ = w.Write(d.Data)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	limit, err := queryLimit(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}

	docs, err := s.store.ListDocuments(r.Context(), userID, limit)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	if docs == nil {
		docs = []db.Document{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"documents": docs,
		"count":     len(docs),
	})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		s.failure(w, r, err)
		return
	}

	d, err := s.store.GetDocument(r.Context(), userID, id)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	if d == nil {
		s.failure(w, r, &ErrNotFound{Resource: "document", ID: id.String()})
		return
	}

	doc := assembly.Document{Format: assembly.Format(d.Format), Title: d.Title}
	s.writeDocument(w, d, doc.Filename(), http.StatusOK)
}

// queryLimit parses the optional ?limit= parameter (1-200).
func queryLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > 200 {
		return 0, &ErrValidation{Field: "limit", Message: fmt.Sprintf("must be between 1 and 200, got %q", raw)}
	}
	return limit, nil
}
