package assembly

import "fmt"

// AssemblyError represents a failure that aborted document assembly.
type AssemblyError struct {
	Format  Format
	Message string
	Cause   error
}

func (e *AssemblyError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("assembly error (%s): %s: %v", e.Format, e.Message, e.Cause)
	}
	return fmt.Sprintf("assembly error (%s): %s", e.Format, e.Message)
}

func (e *AssemblyError) Unwrap() error {
	return e.Cause
}

// UnsupportedFormatError is returned for an unknown output format.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported document format %q: supported formats are print, slides, pdf", e.Format)
}
