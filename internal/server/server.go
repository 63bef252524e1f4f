package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/thewell/content-studio/internal/assembly"
	"github.com/thewell/content-studio/internal/brand"
	"github.com/thewell/content-studio/internal/charts"
	"github.com/thewell/content-studio/internal/chat"
	"github.com/thewell/content-studio/internal/config"
	"github.com/thewell/content-studio/internal/copywriting"
	"github.com/thewell/content-studio/internal/llm"
	"github.com/thewell/content-studio/internal/optimizer"
	"github.com/thewell/content-studio/internal/research"
	"github.com/thewell/content-studio/internal/server/middleware"
	"github.com/thewell/content-studio/internal/server/ratelimit"
)

// DefaultShutdownTimeout bounds graceful shutdown.
const DefaultShutdownTimeout = 30 * time.Second

// Server represents the HTTP server
type Server struct {
	httpServer      *http.Server
	handler         http.Handler
	shutdownTimeout time.Duration

	store      Store
	brand      brand.Config
	optimizer  *optimizer.Optimizer
	scanner    *optimizer.Scanner
	charts     *charts.Renderer
	rasterizer assembly.Rasterizer
	assembler  *assembly.Assembler
	canPrint   bool
	writer     *copywriting.Writer
	assistant  *chat.Assistant
	researcher *research.Researcher

	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	userService *UserService
	authHandler *AuthHandler
	validate    *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// Config holds server configuration
type Config struct {
	Port            int
	ShutdownTimeout time.Duration
}

// Deps are the collaborators a Server is built from. Store, JWT and
// LoginCodes are required; everything else has a default or disables the
// endpoints that need it.
type Deps struct {
	Store      Store
	Brand      *brand.Config
	JWT        *config.JWTConfig
	LoginCodes *config.LoginCodeConfig
	// Mailer defaults to logging codes.
	Mailer Mailer
	// LLM enables copy, design and chat endpoints and research summaries.
	LLM        llm.Client
	Sessions   chat.SessionStore
	Researcher *research.Researcher
	// Printer enables pdf documents.
	Printer    assembly.Printer
	Rasterizer assembly.Rasterizer
	// RateLimit defaults to ratelimit.LoadConfig().
	RateLimit *ratelimit.Config
	Logger    *zap.Logger
	Now       func() time.Time
}

// New creates a new server instance
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("server requires a store")
	}
	if deps.JWT == nil {
		return nil, fmt.Errorf("server requires a JWT configuration")
	}
	if deps.LoginCodes == nil {
		return nil, fmt.Errorf("server requires a login code configuration")
	}

	b := brand.Default()
	if deps.Brand != nil {
		b = *deps.Brand
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	rasterizer := deps.Rasterizer
	if rasterizer == nil {
		rasterizer = charts.NewPNGRasterizer(b)
	}

	s := &Server{
		shutdownTimeout: cfg.ShutdownTimeout,
		store:           deps.Store,
		brand:           b,
		optimizer:       optimizer.New(b),
		scanner:         optimizer.NewScanner(),
		charts:          charts.New(b),
		rasterizer:      rasterizer,
		assembler: assembly.New(b, assembly.Options{
			Rasterizer: rasterizer,
			Printer:    deps.Printer,
			Logger:     logger.Named("assembly"),
			Now:        now,
		}),
		canPrint:   deps.Printer != nil,
		researcher: deps.Researcher,
		validate:   validator.New(),
		logger:     logger,
		now:        now,
	}
	if s.shutdownTimeout <= 0 {
		s.shutdownTimeout = DefaultShutdownTimeout
	}
	if s.researcher == nil {
		s.researcher = research.New(research.Options{
			LLM:            deps.LLM,
			ExcludeDomains: []string{b.Domain},
			Logger:         logger.Named("research"),
		})
	}

	if deps.LLM != nil {
		writer, err := copywriting.New(deps.LLM, b, logger.Named("copywriting"))
		if err != nil {
			return nil, fmt.Errorf("failed to create copywriter: %w", err)
		}
		s.writer = writer

		assistant, err := chat.NewAssistant(deps.LLM, deps.Sessions, b, logger.Named("chat"))
		if err != nil {
			return nil, fmt.Errorf("failed to create assistant: %w", err)
		}
		s.assistant = assistant
	}

	rateConfig := deps.RateLimit
	if rateConfig == nil {
		rateConfig = ratelimit.LoadConfig()
	}
	s.rateLimiter = ratelimit.NewLimiter(rateConfig)

	s.jwtService = NewJWTService(deps.JWT)
	s.jwtService.now = now
	s.userService = NewUserService(deps.Store, deps.Store, deps.LoginCodes, deps.Mailer, logger.Named("auth"))
	s.userService.now = now
	s.authHandler = NewAuthHandler(s.userService, s.jwtService, logger.Named("auth"))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Authentication
	mux.HandleFunc("POST /v1/auth/request-code", s.authHandler.RequestCode)
	mux.HandleFunc("POST /v1/auth/verify-code", s.authHandler.VerifyCode)

	// Everything else requires a session token.
	authed := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	route := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, authed(h))
	}

	route("GET /v1/users/me", s.handleGetMe)
	route("PATCH /v1/users/me", s.handleUpdateMe)
	route("DELETE /v1/users/me", s.handleDeleteMe)

	route("GET /v1/sections", s.handleListSections)
	route("POST /v1/sections", s.handleCreateSection)
	route("GET /v1/sections/{id}", s.handleGetSection)
	route("PUT /v1/sections/{id}", s.handleUpdateSection)
	route("DELETE /v1/sections/{id}", s.handleDeleteSection)

	route("GET /v1/platforms", s.handleListPlatforms)
	route("POST /v1/optimize", s.handleOptimize)
	route("POST /v1/optimize/batch", s.handleOptimizeBatch)
	route("POST /v1/optimize/stream", s.handleOptimizeStream)
	route("POST /v1/compliance/scan", s.handleComplianceScan)
	route("POST /v1/charts", s.handleRenderChart)

	route("GET /v1/documents", s.handleListDocuments)
	route("POST /v1/documents", s.handleCreateDocument)
	route("GET /v1/documents/{id}", s.handleGetDocument)

	route("POST /v1/copy/draft", s.handleDraftCopy)
	route("POST /v1/copy/review", s.handleReviewCopy)
	route("POST /v1/design/spec", s.handleDesignSpec)
	route("POST /v1/chat", s.handleChat)
	route("DELETE /v1/chat/{session}", s.handleResetChat)

	route("GET /v1/research", s.handleListResearch)
	route("POST /v1/research", s.handleResearch)
	route("GET /v1/research/{id}", s.handleGetResearch)

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(mux)))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second, // pdf rendering and research runs
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves requests until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		s.Close()
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.Close()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// Close releases background resources. The store is owned by the caller.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Document-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Flush keeps streaming responses working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// failure maps err to a status and writes it. Server-side failures are logged.
func (s *Server) failure(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	s.errorResponse(w, status, err.Error())
}

// decode reads a JSON body into dst and validates it.
func (s *Server) decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return &ErrValidation{Message: "invalid request body: " + err.Error()}
	}
	if err := s.validate.Struct(dst); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return nil
		}
		return &ErrValidation{Message: extractValidationErrors(err)}
	}
	return nil
}

const maxBodyBytes = 4 << 20

// extractClientID extracts the client identifier from the request.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds())
		if seconds < 1 {
			seconds = 1
		}
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	s.logger.Warn("rate limit exceeded",
		zap.String("client", s.extractClientID(r)),
		zap.String("path", r.URL.Path),
		zap.Int("limit", info.Limit),
		zap.Time("reset", info.ResetTime),
	)

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
