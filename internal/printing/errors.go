package printing

import "fmt"

// BrowserError represents a failure driving headless Chrome.
type BrowserError struct {
	Operation string
	Message   string
	Cause     error
}

func (e *BrowserError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("browser %s failed: %s: %v", e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("browser %s failed: %s", e.Operation, e.Message)
}

func (e *BrowserError) Unwrap() error {
	return e.Cause
}

// PDFError represents a PDF that could not be parsed.
type PDFError struct {
	Message string
	Cause   error
}

func (e *PDFError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("pdf error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("pdf error: %s", e.Message)
}

func (e *PDFError) Unwrap() error {
	return e.Cause
}
