package llm

import "strings"

// StripFence removes a ``` fence, and any language tag on it, from a model
// reply.
func StripFence(text string) string {
	text = strings.TrimSpace(text)
	rest, ok := strings.CutPrefix(text, "```")
	if !ok {
		return text
	}
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 && !strings.ContainsAny(rest[:nl], " {[") {
		rest = rest[nl+1:]
	}
	if end := strings.LastIndex(rest, "```"); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}

// CleanJSONBlock extracts the JSON payload from a model reply. Models wrap
// JSON in fences and sometimes surround it with prose even when asked not to.
func CleanJSONBlock(text string) string {
	text = StripFence(text)

	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return text
	}
	closer := byte('}')
	if text[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(text, closer)
	if end < start {
		return text
	}
	return text[start : end+1]
}
