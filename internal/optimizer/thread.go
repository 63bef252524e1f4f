package optimizer

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	threadChunkLimit = 275
	// room for "🧵NNN/ "
	threadPrefixReserve = 6
)

var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]+|[^.!?]+$`)

// threadStrategy splits text into numbered tweets of at most threadChunkLimit
// code points each, packing whole sentences greedily.
func threadStrategy(text string) []string {
	budget := threadChunkLimit - threadPrefixReserve

	var pieces []string
	for _, s := range sentencePattern.FindAllString(text, -1) {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if utf8.RuneCountInString(s) <= budget {
			pieces = append(pieces, s)
			continue
		}
		pieces = append(pieces, splitWords(s, budget)...)
	}

	var chunks []string
	current := ""
	for _, p := range pieces {
		switch {
		case current == "":
			current = p
		case utf8.RuneCountInString(current)+1+utf8.RuneCountInString(p) <= budget:
			current += " " + p
		default:
			chunks = append(chunks, current)
			current = p
		}
	}
	if current != "" {
		chunks = append(chunks, current)
	}

	tweets := make([]string, len(chunks))
	for i, c := range chunks {
		tweets[i] = fmt.Sprintf("🧵%d/ %s", i+1, c)
	}
	return tweets
}

// splitWords breaks an overlong sentence on word boundaries. Single words
// longer than budget are cut by code point.
func splitWords(sentence string, budget int) []string {
	var out []string
	current := ""
	for _, w := range strings.Fields(sentence) {
		for utf8.RuneCountInString(w) > budget {
			if current != "" {
				out = append(out, current)
				current = ""
			}
			r := []rune(w)
			out = append(out, string(r[:budget]))
			w = string(r[budget:])
		}
		switch {
		case w == "":
		case current == "":
			current = w
		case utf8.RuneCountInString(current)+1+utf8.RuneCountInString(w) <= budget:
			current += " " + w
		default:
			out = append(out, current)
			current = w
		}
	}
	if current != "" {
		out = append(out, current)
	}
	return out
}
