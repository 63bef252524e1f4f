//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
)

// CreateSectionRequest creates a content section.
type CreateSectionRequest struct {
	SectionType  SectionType     `json:"section_type" validate:"required,oneof=cover role_description executive_summary compensation_analysis market_insights call_to_action other"`
	Title        string          `json:"title" validate:"required,max=300"`
	ContentData  json.RawMessage `json:"content_data,omitempty"`
	DisplayOrder int             `json:"display_order"`
}

// UpdateSectionRequest replaces the editable fields of a section. Nil fields are left unchanged.
type UpdateSectionRequest struct {
	SectionType  *SectionType    `json:"section_type,omitempty" validate:"omitempty,oneof=cover role_description executive_summary compensation_analysis market_insights call_to_action other"`
	Title        *string         `json:"title,omitempty" validate:"omitempty,min=1,max=300"`
	ContentData  json.RawMessage `json:"content_data,omitempty"`
	DisplayOrder *int            `json:"display_order,omitempty"`
}

// Validate validates the CreateSectionRequest using the validator.
func (r *CreateSectionRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the UpdateSectionRequest using the validator.
func (r *UpdateSectionRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
