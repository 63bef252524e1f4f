// Package types provides type definitions for structured data used throughout Content Studio.
package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// RequestCodeRequest asks for a one-time login code to be sent to an email address.
type RequestCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyCodeRequest exchanges a one-time login code for a session token.
type VerifyCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

// User represents a user profile for API responses (avoids import cycle with db package).
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoginResponse represents the verify-code response with user data and authentication token.
type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// Validate validates the RequestCodeRequest using the validator.
func (r *RequestCodeRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the VerifyCodeRequest using the validator.
func (r *VerifyCodeRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
