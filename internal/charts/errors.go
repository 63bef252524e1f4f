package charts

import "fmt"

// InvalidChartError reports chart input that cannot be drawn.
type InvalidChartError struct {
	Message string
}

func (e *InvalidChartError) Error() string {
	return fmt.Sprintf("invalid chart: %s", e.Message)
}

func invalidf(format string, args ...any) error {
	return &InvalidChartError{Message: fmt.Sprintf(format, args...)}
}
