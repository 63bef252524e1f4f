package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/thewell/content-studio/internal/types"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	userService *UserService
	jwtService  *JWTService
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(userService *UserService, jwtService *JWTService, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{
		userService: userService,
		jwtService:  jwtService,
		logger:      logger,
	}
}

// RequestCode emails a one-time login code. The response does not reveal
// whether the address already has an account.
func (h *AuthHandler) RequestCode(w http.ResponseWriter, r *http.Request) {
	var req types.RequestCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		h.fail(w, http.StatusBadRequest, (&ErrValidation{Message: extractValidationErrors(err)}).Error())
		return
	}

	if err := h.userService.RequestCode(r.Context(), req.Email); err != nil {
		h.logger.Error("failed to issue login code", zap.Error(err))
		h.fail(w, http.StatusInternalServerError, "Failed to issue login code")
		return
	}

	h.respond(w, http.StatusAccepted, map[string]string{
		"message": "If the address is valid, a login code is on its way.",
	})
}

// VerifyCode exchanges a login code for a session token.
func (h *AuthHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req types.VerifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		h.fail(w, http.StatusBadRequest, (&ErrValidation{Message: extractValidationErrors(err)}).Error())
		return
	}

	user, err := h.userService.VerifyCode(r.Context(), req.Email, req.Code)
	if err != nil {
		status := HTTPStatus(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("failed to verify login code", zap.Error(err))
		}
		h.fail(w, status, err.Error())
		return
	}

	token, err := h.jwtService.GenerateToken(user.ID)
	if err != nil {
		h.fail(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	h.respond(w, http.StatusOK, types.LoginResponse{User: user, Token: token})
}

func extractValidationErrors(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		ve := validationErrors[0]
		return fmt.Sprintf("%s - %s", ve.Field(), ve.Tag())
	}
	return "invalid request"
}

func (h *AuthHandler) respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warn("failed to encode JSON response", zap.Error(err))
	}
}

func (h *AuthHandler) fail(w http.ResponseWriter, status int, message string) {
	h.respond(w, status, map[string]string{"error": message})
}
