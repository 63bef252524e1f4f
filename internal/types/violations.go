// Package types provides type definitions for structured data used throughout Content Studio.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Severity levels for compliance findings.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Finding sources.
const (
	SourceLocal = "local"
	SourceLLM   = "llm"
)

// Violation represents a single compliance finding against a piece of copy.
type Violation struct {
	RuleID   string `json:"rule_id"`
	Severity string `json:"severity"`
	Details  string `json:"details"`
	Source   string `json:"source,omitempty"`
	Excerpt  string `json:"excerpt,omitempty"`
}

// Violations represents a collection of compliance findings.
type Violations struct {
	Violations []Violation `json:"violations"`
}

// HasErrors reports whether any finding is error severity.
func (v Violations) HasErrors() bool {
	for _, violation := range v.Violations {
		if violation.Severity == SeverityError {
			return true
		}
	}
	return false
}
