package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/thewell/content-studio/internal/assembly"
	"github.com/thewell/content-studio/internal/charts"
	"github.com/thewell/content-studio/internal/chat"
	"github.com/thewell/content-studio/internal/copywriting"
	"github.com/thewell/content-studio/internal/llm"
	"github.com/thewell/content-studio/internal/optimizer"
	"github.com/thewell/content-studio/internal/research"
	"github.com/thewell/content-studio/internal/schemas"
)

// ErrInvalidCode indicates a missing, expired or wrong login code
type ErrInvalidCode struct{}

func (e *ErrInvalidCode) Error() string {
	return "invalid or expired login code"
}

// ErrTooManyAttempts indicates a login code was locked after repeated failures
type ErrTooManyAttempts struct {
	Email string
}

func (e *ErrTooManyAttempts) Error() string {
	return fmt.Sprintf("too many attempts for %s: request a new code", e.Email)
}

// ErrUserNotFound indicates user was not found
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// ErrNotFound indicates a missing resource owned by the caller
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrUnavailable indicates a feature whose backing service is not configured
type ErrUnavailable struct {
	Feature string
	Reason  string
}

func (e *ErrUnavailable) Error() string {
	return fmt.Sprintf("%s is not available: %s", e.Feature, e.Reason)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch err.(type) {
	case *ErrInvalidCode:
		return http.StatusUnauthorized
	case *ErrTooManyAttempts:
		return http.StatusTooManyRequests
	case *ErrUserNotFound, *ErrNotFound:
		return http.StatusNotFound
	case *ErrValidation:
		return http.StatusBadRequest
	case *ErrUnavailable:
		return http.StatusServiceUnavailable
	}

	var (
		platformErr *optimizer.UnsupportedPlatformError
		chartErr    *charts.InvalidChartError
		formatErr   *assembly.UnsupportedFormatError
		assemblyErr *assembly.AssemblyError
		schemaErr   *schemas.ValidationError
		copyErr     *copywriting.ValidationError
		messageErr  *chat.MessageError
		researchErr *research.RequestError
		apiErr      *llm.APICallError
		copyAPIErr  *copywriting.APICallError
		parseErr    *copywriting.ParseError
	)
	switch {
	case errors.As(err, &platformErr), errors.As(err, &chartErr), errors.As(err, &formatErr),
		errors.As(err, &schemaErr), errors.As(err, &copyErr), errors.As(err, &messageErr),
		errors.As(err, &researchErr):
		return http.StatusBadRequest
	case errors.As(err, &assemblyErr):
		if assemblyErr.Cause == nil {
			return http.StatusUnprocessableEntity
		}
		return http.StatusInternalServerError
	case errors.As(err, &apiErr), errors.As(err, &copyAPIErr), errors.As(err, &parseErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
