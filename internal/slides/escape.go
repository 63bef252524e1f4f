package slides

import "strings"

// EscapeXML escapes text for use in XML character data and attribute values.
// Characters that XML 1.0 cannot carry at all are dropped.
func EscapeXML(text string) string {
	if text == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(text) + len(text)/8)

	for _, r := range text {
		switch {
		case r == '&':
			result.WriteString("&amp;")
		case r == '<':
			result.WriteString("&lt;")
		case r == '>':
			result.WriteString("&gt;")
		case r == '"':
			result.WriteString("&quot;")
		case r == '\'':
			result.WriteString("&apos;")
		case r == '\t' || r == '\n' || r == '\r':
			result.WriteRune(r)
		case r < 0x20 || r == 0xFFFE || r == 0xFFFF:
			// not representable in XML 1.0
		default:
			result.WriteRune(r)
		}
	}

	return result.String()
}
