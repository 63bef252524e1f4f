package optimizer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// truncateReserve is kept free at the end of the window for the marker.
const truncateReserve = 20

// truncate shortens text to fit a budget, preferring to cut after the last
// full stop in the window and then at the last space, and appends marker.
func truncate(text string, budget int, marker string) string {
	runes := []rune(text)
	window := budget - truncateReserve
	if window < 0 {
		window = 0
	}
	if window > len(runes) {
		window = len(runes)
	}
	head := string(runes[:window])

	cut := head
	if i := strings.LastIndex(head, "."); i >= 0 {
		cut = head[:i+1]
	} else if i := strings.LastIndex(head, " "); i > 0 {
		cut = head[:i]
	}
	return strings.TrimRightFunc(cut, unicode.IsSpace) + marker
}

// hardCut trims s to at most limit code points.
func hardCut(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
