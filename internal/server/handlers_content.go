package server

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/thewell/content-studio/internal/charts"
	"github.com/thewell/content-studio/internal/optimizer"
	"github.com/thewell/content-studio/internal/types"
)

// OptimizeRequest asks for copy to be rewritten for one platform.
type OptimizeRequest struct {
	Content     string                `json:"content" validate:"max=200000"`
	Platform    optimizer.PlatformID  `json:"platform" validate:"required"`
	ContentType optimizer.ContentType `json:"content_type,omitempty" validate:"omitempty,oneof=post article"`
}

// OptimizeResponse is an optimization plus the compliance findings on the
// original copy.
type OptimizeResponse struct {
	Result     *optimizer.Result `json:"result"`
	Violations []types.Violation `json:"violations"`
}

// BatchOptimizeRequest rewrites copy for several platforms. An empty platform
// list means every supported platform.
type BatchOptimizeRequest struct {
	Content     string                 `json:"content" validate:"max=200000"`
	Platforms   []optimizer.PlatformID `json:"platforms,omitempty" validate:"max=4"`
	ContentType optimizer.ContentType  `json:"content_type,omitempty" validate:"omitempty,oneof=post article"`
}

// BatchOptimizeResponse holds one result per platform in request order.
type BatchOptimizeResponse struct {
	Results    []*optimizer.Result `json:"results"`
	Violations []types.Violation   `json:"violations"`
}

// ScanRequest is copy to check against the compliance rules.
type ScanRequest struct {
	Content string `json:"content" validate:"required,max=200000"`
}

// ScanResponse lists compliance findings.
type ScanResponse struct {
	Compliant  bool              `json:"compliant"`
	Violations []types.Violation `json:"violations"`
}

// ChartRequest renders a chart. Format is svg (default), png or json.
type ChartRequest struct {
	charts.Spec
	Width  int    `json:"width,omitempty" validate:"omitempty,min=100,max=4000"`
	Height int    `json:"height,omitempty" validate:"omitempty,min=100,max=4000"`
	Format string `json:"format,omitempty" validate:"omitempty,oneof=svg png json"`
}

func contentTypeOrPost(ct optimizer.ContentType) optimizer.ContentType {
	if ct == "" {
		return optimizer.ContentPost
	}
	return ct
}

func (s *Server) findings(content string) []types.Violation {
	found := s.scanner.Findings(content)
	if found == nil {
		return []types.Violation{}
	}
	return found
}

func (s *Server) handleListPlatforms(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{"platforms": s.optimizer.Profiles()})
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req OptimizeRequest
	if err := s.decode(r, &req); err != nil {
		s.failure(w, r, err)
		return
	}

	result, err := s.optimizer.Optimize(req.Content, req.Platform, contentTypeOrPost(req.ContentType))
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, OptimizeResponse{Result: result, Violations: s.findings(req.Content)})
}

func (s *Server) handleOptimizeBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchOptimizeRequest
	if err := s.decode(r, &req); err != nil {
		s.failure(w, r, err)
		return
	}

	results, err := s.optimizer.OptimizeAll(req.Content, lowerPlatforms(req.Platforms), contentTypeOrPost(req.ContentType))
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, BatchOptimizeResponse{Results: results, Violations: s.findings(req.Content)})
}

// handleOptimizeStream sends one "result" event per platform, then a
// "compliance" event and a "complete" event.
func (s *Server) handleOptimizeStream(w http.ResponseWriter, r *http.Request) {
	var req BatchOptimizeRequest
	if err := s.decode(r, &req); err != nil {
		s.failure(w, r, err)
		return
	}

	platforms := lowerPlatforms(req.Platforms)
	if len(platforms) == 0 {
		for _, p := range s.optimizer.Profiles() {
			platforms = append(platforms, p.ID)
		}
	}
	// Reject unknown platforms before the stream starts.
	for _, p := range platforms {
		if _, err := s.optimizer.Profile(p); err != nil {
			s.failure(w, r, err)
			return
		}
	}

	stream, err := openEventStream(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	ct := contentTypeOrPost(req.ContentType)
	for _, p := range platforms {
		if err := r.Context().Err(); err != nil {
			return
		}
		result, err := s.optimizer.Optimize(req.Content, p, ct)
		if err != nil {
			stream.fail(err)
			return
		}
		if err := stream.send(eventResult, result); err != nil {
			return
		}
	}
	if err := stream.send(eventCompliance, s.findings(req.Content)); err != nil {
		return
	}
	if err := stream.complete(len(platforms)); err != nil {
		s.logger.Debug("optimize stream closed early", zap.Error(err))
	}
}

func (s *Server) handleComplianceScan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := s.decode(r, &req); err != nil {
		s.failure(w, r, err)
		return
	}

	violations := s.findings(req.Content)
	s.jsonResponse(w, http.StatusOK, ScanResponse{
		Compliant:  !types.Violations{Violations: violations}.HasErrors(),
		Violations: violations,
	})
}

func (s *Server) handleRenderChart(w http.ResponseWriter, r *http.Request) {
	var req ChartRequest
	if err := s.decode(r, &req); err != nil {
		s.failure(w, r, err)
		return
	}

	switch req.Format {
	case "png":
		png, err := s.rasterizer.RasterizeChart(r.Context(), req.Spec, req.Width, req.Height)
		if err != nil {
			s.failure(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(png)
		return
	}

	svg, err := s.charts.Render(req.Spec, req.Width, req.Height)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	if req.Format == "json" {
		s.jsonResponse(w, http.StatusOK, map[string]string{
			"svg":      svg,
			"data_uri": charts.DataURI(svg),
		})
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(svg))
}

func lowerPlatforms(in []optimizer.PlatformID) []optimizer.PlatformID {
	out := make([]optimizer.PlatformID, len(in))
	for i, p := range in {
		out[i] = optimizer.PlatformID(strings.ToLower(strings.TrimSpace(string(p))))
	}
	return out
}
