package optimizer

import (
	"fmt"
	"strings"
)

// UnsupportedPlatformError is returned when a caller names a platform that has no profile.
type UnsupportedPlatformError struct {
	Platform  string
	Supported []string
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("unsupported platform %q: supported platforms are %s", e.Platform, strings.Join(e.Supported, ", "))
}
