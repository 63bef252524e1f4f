package llm

import "fmt"

// APICallError represents a failed request to the model provider.
type APICallError struct {
	Operation string
	Model     string
	Cause     error
}

func (e *APICallError) Error() string {
	return fmt.Sprintf("LLM %s failed (model %s): %v", e.Operation, e.Model, e.Cause)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}
