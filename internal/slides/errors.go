package slides

import "fmt"

// TemplateError represents an error executing one of the OOXML part templates.
type TemplateError struct {
	Part    string
	Message string
	Cause   error
}

func (e *TemplateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("template error in %s: %s: %v", e.Part, e.Message, e.Cause)
	}
	return fmt.Sprintf("template error in %s: %s", e.Part, e.Message)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// WriteError represents a failure producing the PPTX package.
type WriteError struct {
	Message string
	Cause   error
}

func (e *WriteError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("pptx write error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("pptx write error: %s", e.Message)
}

func (e *WriteError) Unwrap() error {
	return e.Cause
}
