// Package types provides type definitions for structured data used throughout Content Studio.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SectionType identifies which body shape and layout a content record uses.
type SectionType string

// Section types understood by the renderers. Anything else renders with the generic layout.
const (
	SectionCover                SectionType = "cover"
	SectionRoleDescription      SectionType = "role_description"
	SectionExecutiveSummary     SectionType = "executive_summary"
	SectionCompensationAnalysis SectionType = "compensation_analysis"
	SectionMarketInsights       SectionType = "market_insights"
	SectionCallToAction         SectionType = "call_to_action"
	SectionOther                SectionType = "other"
)

// SectionTypes lists every known section type in display order.
var SectionTypes = []SectionType{
	SectionCover,
	SectionRoleDescription,
	SectionExecutiveSummary,
	SectionCompensationAnalysis,
	SectionMarketInsights,
	SectionCallToAction,
	SectionOther,
}

// Valid reports whether s is one of the known section types.
func (s SectionType) Valid() bool {
	for _, known := range SectionTypes {
		if s == known {
			return true
		}
	}
	return false
}

// Compensation is a free-text compensation breakdown such as "$150K - $200K".
type Compensation struct {
	Base  string `json:"base,omitempty"`
	Bonus string `json:"bonus,omitempty"`
	Total string `json:"total,omitempty"`
}

// SectionBody is the typed content_data of a record. The concrete type is
// selected by the record's section type.
type SectionBody interface {
	// Kind returns the section type this body was decoded for.
	Kind() SectionType
	// Text returns the primary free text of the body (description, then content).
	Text() string
}

// Extra holds content_data fields that the typed bodies do not model.
// They round-trip through JSON unchanged.
type Extra map[string]json.RawMessage

// CoverBody is the body of a cover section.
type CoverBody struct {
	Subtitle string `json:"subtitle,omitempty"`
	Extra    Extra  `json:"-"`
}

// RoleDescriptionBody is the body of a role description section.
type RoleDescriptionBody struct {
	Description  string        `json:"description,omitempty"`
	Content      string        `json:"content,omitempty"`
	Compensation *Compensation `json:"compensation,omitempty"`
	Extra        Extra         `json:"-"`
}

// CallToActionBody is the body of a call-to-action section.
type CallToActionBody struct {
	Description string `json:"description,omitempty"`
	Content     string `json:"content,omitempty"`
	ButtonText  string `json:"button_text,omitempty"`
	URL         string `json:"url,omitempty"`
	Extra       Extra  `json:"-"`
}

// GenericBody is the body of every other section type.
type GenericBody struct {
	Type         SectionType   `json:"-"`
	Description  string        `json:"description,omitempty"`
	Content      string        `json:"content,omitempty"`
	Compensation *Compensation `json:"compensation,omitempty"`
	Extra        Extra         `json:"-"`
}

// Kind implements SectionBody.
func (CoverBody) Kind() SectionType { return SectionCover }

// Text implements SectionBody.
func (b CoverBody) Text() string { return b.Subtitle }

// Kind implements SectionBody.
func (RoleDescriptionBody) Kind() SectionType { return SectionRoleDescription }

// Text implements SectionBody.
func (b RoleDescriptionBody) Text() string { return firstNonEmpty(b.Description, b.Content) }

// Kind implements SectionBody.
func (CallToActionBody) Kind() SectionType { return SectionCallToAction }

// Text implements SectionBody.
func (b CallToActionBody) Text() string { return firstNonEmpty(b.Content, b.Description) }

// Kind implements SectionBody.
func (b GenericBody) Kind() SectionType {
	if b.Type == "" {
		return SectionOther
	}
	return b.Type
}

// Text implements SectionBody.
func (b GenericBody) Text() string { return firstNonEmpty(b.Content, b.Description) }

// ContentRecord is one authored section as stored in the database.
type ContentRecord struct {
	ID           uuid.UUID   `json:"id"`
	UserID       uuid.UUID   `json:"user_id,omitempty"`
	SectionType  SectionType `json:"section_type"`
	Title        string      `json:"title"`
	Body         SectionBody `json:"-"`
	DisplayOrder int         `json:"display_order"`
	CreatedAt    time.Time   `json:"created_at,omitempty"`
	UpdatedAt    time.Time   `json:"updated_at,omitempty"`
}

// contentRecordJSON mirrors ContentRecord on the wire.
type contentRecordJSON struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id,omitempty"`
	SectionType  SectionType     `json:"section_type"`
	Title        string          `json:"title"`
	ContentData  json.RawMessage `json:"content_data"`
	DisplayOrder int             `json:"display_order"`
	CreatedAt    time.Time       `json:"created_at,omitempty"`
	UpdatedAt    time.Time       `json:"updated_at,omitempty"`
}

// UnmarshalJSON decodes a record, tolerating loosely-typed content_data.
func (r *ContentRecord) UnmarshalJSON(data []byte) error {
	var raw contentRecordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = ContentRecord{
		ID:           raw.ID,
		UserID:       raw.UserID,
		SectionType:  raw.SectionType,
		Title:        raw.Title,
		Body:         DecodeSectionBody(raw.SectionType, raw.ContentData),
		DisplayOrder: raw.DisplayOrder,
		CreatedAt:    raw.CreatedAt,
		UpdatedAt:    raw.UpdatedAt,
	}
	return nil
}

// MarshalJSON encodes a record with its body as content_data.
func (r ContentRecord) MarshalJSON() ([]byte, error) {
	body, err := EncodeSectionBody(r.Body)
	if err != nil {
		return nil, err
	}
	return json.Marshal(contentRecordJSON{
		ID:           r.ID,
		UserID:       r.UserID,
		SectionType:  r.SectionType,
		Title:        r.Title,
		ContentData:  body,
		DisplayOrder: r.DisplayOrder,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	})
}

// DecodeSectionBody turns raw content_data into the typed body for sectionType.
//
// It never fails. A JSON string is parsed as an embedded JSON object; if that
// does not parse, the string itself becomes the body text. Null, empty or
// otherwise unusable input yields an empty body.
func DecodeSectionBody(sectionType SectionType, raw json.RawMessage) SectionBody {
	fields := normalizeContentData(raw)

	switch sectionType {
	case SectionCover:
		var b CoverBody
		b.Subtitle = takeString(fields, "subtitle")
		b.Extra = fields
		return b
	case SectionRoleDescription:
		var b RoleDescriptionBody
		b.Description = takeString(fields, "description")
		b.Content = takeString(fields, "content")
		b.Compensation = takeCompensation(fields)
		b.Extra = fields
		return b
	case SectionCallToAction:
		var b CallToActionBody
		b.Description = takeString(fields, "description")
		b.Content = takeString(fields, "content")
		b.ButtonText = takeString(fields, "button_text")
		b.URL = takeString(fields, "url")
		b.Extra = fields
		return b
	default:
		b := GenericBody{Type: sectionType}
		b.Description = takeString(fields, "description")
		b.Content = takeString(fields, "content")
		b.Compensation = takeCompensation(fields)
		b.Extra = fields
		return b
	}
}

// EncodeSectionBody renders a body back to its content_data JSON object,
// merging any passthrough fields.
func EncodeSectionBody(body SectionBody) (json.RawMessage, error) {
	if body == nil {
		return json.RawMessage(`{}`), nil
	}

	var (
		typed []byte
		extra Extra
		err   error
	)
	switch b := body.(type) {
	case CoverBody:
		typed, err = json.Marshal(b)
		extra = b.Extra
	case RoleDescriptionBody:
		typed, err = json.Marshal(b)
		extra = b.Extra
	case CallToActionBody:
		typed, err = json.Marshal(b)
		extra = b.Extra
	case GenericBody:
		typed, err = json.Marshal(b)
		extra = b.Extra
	default:
		return nil, fmt.Errorf("unsupported section body type %T", body)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode section body: %w", err)
	}

	merged := make(map[string]json.RawMessage, len(extra)+4)
	for k, v := range extra {
		merged[k] = v
	}
	var known map[string]json.RawMessage
	if err := json.Unmarshal(typed, &known); err != nil {
		return nil, fmt.Errorf("failed to encode section body: %w", err)
	}
	for k, v := range known {
		merged[k] = v
	}
	out, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("failed to encode section body: %w", err)
	}
	return out, nil
}

// CompensationOf returns the compensation block of a body, if it carries one.
func CompensationOf(body SectionBody) *Compensation {
	switch b := body.(type) {
	case RoleDescriptionBody:
		return b.Compensation
	case GenericBody:
		return b.Compensation
	}
	return nil
}

func normalizeContentData(raw json.RawMessage) Extra {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Extra{}
	}

	// Double-encoded content_data arrives as a JSON string.
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Extra{}
		}
		var fields Extra
		if err := json.Unmarshal([]byte(s), &fields); err == nil && fields != nil {
			return fields
		}
		text, _ := json.Marshal(s)
		return Extra{"content": text}
	}

	var fields Extra
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return Extra{}
	}
	return fields
}

// takeString removes key from fields and returns it as a string. Non-string
// values are left in place as passthrough data.
func takeString(fields Extra, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	delete(fields, key)
	return s
}

// takeCompensation decodes any compensation object, empty ones included, so
// blank figures still render with placeholders.
func takeCompensation(fields Extra) *Compensation {
	raw, ok := fields["compensation"]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	var c Compensation
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil
	}
	delete(fields, "compensation")
	return &c
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
