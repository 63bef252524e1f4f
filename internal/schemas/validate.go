// Package schemas validates section content_data against embedded JSON Schemas.
package schemas

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/thewell/content-studio/internal/types"
)

//go:embed content/*.schema.json
var contentFS embed.FS

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

var (
	compileOnce sync.Once
	compiled    map[string]*gojsonschema.Schema
	compileErr  error
)

// SchemaName returns the embedded schema file used for a section type.
func SchemaName(sectionType types.SectionType) string {
	switch sectionType {
	case types.SectionCover, types.SectionRoleDescription, types.SectionCallToAction:
		return "content/" + string(sectionType) + ".schema.json"
	}
	return "content/section.schema.json"
}

func loadSchemas() (map[string]*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		entries, err := contentFS.ReadDir("content")
		if err != nil {
			compileErr = &SchemaLoadError{Path: "content", Message: "failed to list embedded schemas", Cause: err}
			return
		}
		out := make(map[string]*gojsonschema.Schema, len(entries))
		for _, e := range entries {
			path := "content/" + e.Name()
			data, err := contentFS.ReadFile(path)
			if err != nil {
				compileErr = &SchemaLoadError{Path: path, Message: "failed to read schema", Cause: err}
				return
			}
			schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
			if err != nil {
				compileErr = &SchemaLoadError{Path: path, Message: "failed to compile schema", Cause: err}
				return
			}
			out[path] = schema
		}
		compiled = out
	})
	return compiled, compileErr
}

// ValidateContentData checks a section body against the schema for its type.
// Missing, null and plain-text bodies are accepted as-is since the decoder
// tolerates them; a JSON string holding an object is validated as that object.
func ValidateContentData(sectionType types.SectionType, raw json.RawMessage) error {
	doc := bytes.TrimSpace(raw)
	if len(doc) == 0 || bytes.Equal(doc, []byte("null")) {
		return nil
	}
	if doc[0] == '"' {
		var s string
		if err := json.Unmarshal(doc, &s); err != nil {
			return &ValidationError{Errors: []FieldError{{Field: "(root)", Message: "invalid JSON string"}}}
		}
		inner := bytes.TrimSpace([]byte(s))
		if len(inner) == 0 || inner[0] != '{' || !json.Valid(inner) {
			return nil
		}
		doc = inner
	}

	all, err := loadSchemas()
	if err != nil {
		return err
	}
	name := SchemaName(sectionType)
	schema, ok := all[name]
	if !ok {
		return &SchemaLoadError{Path: name, Message: "schema not embedded"}
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return &ValidationError{Errors: []FieldError{{Field: "(root)", Message: err.Error()}}}
	}
	return resultError(result)
}

// ValidateJSONString validates JSON string content against schema string content
func ValidateJSONString(schemaContent, jsonContent string) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaContent)
	documentLoader := gojsonschema.NewStringLoader(jsonContent)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{
			Path:    "(string schema)",
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}
	return resultError(result)
}

func resultError(result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
