package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/thewell/content-studio/internal/assembly"
	"github.com/thewell/content-studio/internal/charts"
	"github.com/thewell/content-studio/internal/chat"
	"github.com/thewell/content-studio/internal/copywriting"
	"github.com/thewell/content-studio/internal/llm"
	"github.com/thewell/content-studio/internal/optimizer"
	"github.com/thewell/content-studio/internal/research"
	"github.com/thewell/content-studio/internal/schemas"
)

func TestErrInvalidCode(t *testing.T) {
	err := &ErrInvalidCode{}
	assert.Equal(t, "invalid or expired login code", err.Error())
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(err))
}

func TestErrTooManyAttempts(t *testing.T) {
	err := &ErrTooManyAttempts{Email: "advisor@example.com"}
	assert.Contains(t, err.Error(), "advisor@example.com")
	assert.Equal(t, http.StatusTooManyRequests, HTTPStatus(err))
}

func TestErrUserNotFound(t *testing.T) {
	userID := uuid.New()
	err := &ErrUserNotFound{UserID: userID}
	assert.Equal(t, "user not found: "+userID.String(), err.Error())
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
}

func TestErrNotFound(t *testing.T) {
	err := &ErrNotFound{Resource: "section", ID: "abc"}
	assert.Equal(t, "section not found: abc", err.Error())
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
}

func TestErrValidation(t *testing.T) {
	err := &ErrValidation{Field: "email", Message: "invalid format"}
	assert.Equal(t, "validation error: email - invalid format", err.Error())
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))

	bare := &ErrValidation{Message: "body is empty"}
	assert.Equal(t, "validation error: body is empty", bare.Error())
}

func TestErrUnavailable(t *testing.T) {
	err := &ErrUnavailable{Feature: "chat", Reason: "no LLM client is configured"}
	assert.Equal(t, "chat is not available: no LLM client is configured", err.Error())
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(err))
}

func TestHTTPStatus_DomainErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unsupported platform", &optimizer.UnsupportedPlatformError{Platform: "myspace"}, http.StatusBadRequest},
		{"wrapped platform", fmt.Errorf("failed to optimize: %w", &optimizer.UnsupportedPlatformError{}), http.StatusBadRequest},
		{"invalid chart", &charts.InvalidChartError{Message: "empty"}, http.StatusBadRequest},
		{"unsupported format", &assembly.UnsupportedFormatError{Format: "docx"}, http.StatusBadRequest},
		{"schema", &schemas.ValidationError{}, http.StatusBadRequest},
		{"copy validation", &copywriting.ValidationError{Field: "topic"}, http.StatusBadRequest},
		{"chat message", &chat.MessageError{Message: "empty"}, http.StatusBadRequest},
		{"research request", &research.RequestError{Message: "query is required"}, http.StatusBadRequest},
		{"assembly input", &assembly.AssemblyError{Format: assembly.FormatPrint, Message: "no sections"}, http.StatusUnprocessableEntity},
		{"assembly failure", &assembly.AssemblyError{Format: assembly.FormatPDF, Message: "print", Cause: errors.New("boom")}, http.StatusInternalServerError},
		{"llm", &llm.APICallError{Operation: "chat", Cause: errors.New("quota")}, http.StatusBadGateway},
		{"copy api", &copywriting.APICallError{Message: "draft"}, http.StatusBadGateway},
		{"copy parse", &copywriting.ParseError{Message: "empty"}, http.StatusBadGateway},
		{"unknown", errors.New("database down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
