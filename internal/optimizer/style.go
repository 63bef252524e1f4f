package optimizer

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	linkedInDisclaimer = "\n\nDisclaimer: This post is for informational purposes only and does not constitute investment advice."
	facebookQuestion   = "\n\nWhat do you think? Share your thoughts in the comments!"

	instagramPreviewLimit   = 125
	instagramShortenedFirst = 120
	instagramMoreMarker     = "... ⬇️"
)

var (
	listMarker       = regexp.MustCompile(`(?m)^(\s*)- `)
	financialMention = regexp.MustCompile(`(?i)\b(invest\w*|financial|wealth)\b`)
	firstSentenceEnd = regexp.MustCompile(`[.!?](\s|$)`)
	twitterFiller    = regexp.MustCompile(`(?i)\b(the|that|very)\b[ \t]*`)
	repeatedSpaces   = regexp.MustCompile(`[ \t]{2,}`)
	facebookRewrites = strings.NewReplacer("We are pleased to announce", "Exciting news!", "It is important to note", "Did you know?")
	twitterAbbrevs   = []abbreviation{
		{regexp.MustCompile(`(?i)\bwithout\b`), "w/o"},
		{regexp.MustCompile(`(?i)\bwith\b`), "w/"},
		{regexp.MustCompile(`(?i)\band\b`), "&"},
		{regexp.MustCompile(`(?i)\bbecause\b`), "b/c"},
	}
	instagramEmojis = []abbreviation{
		{regexp.MustCompile(`(?i)\bwealth management\b`), "💰 $0"},
		{regexp.MustCompile(`(?i)\binvestment`), "📈 $0"},
		{regexp.MustCompile(`(?i)\bsuccess`), "🎯 $0"},
		{regexp.MustCompile(`(?i)\bgrowth\b`), "📊 $0"},
	}
)

type abbreviation struct {
	pattern     *regexp.Regexp
	replacement string
}

// preTransform runs before the length check. Only Twitter rewrites here so
// abbreviations count toward fitting the limit.
func preTransform(id PlatformID, text string) string {
	if id != Twitter {
		return text
	}
	for _, a := range twitterAbbrevs {
		text = a.pattern.ReplaceAllString(text, a.replacement)
	}
	return text
}

// styleTransform applies the platform's post-truncation rewrite.
func styleTransform(id PlatformID, text string) string {
	switch id {
	case LinkedIn:
		return styleLinkedIn(text)
	case Facebook:
		return styleFacebook(text)
	case Instagram:
		return styleInstagram(text)
	}
	return text
}

func styleLinkedIn(text string) string {
	text = listMarker.ReplaceAllString(text, "${1}• ")
	text = strings.ReplaceAll(text, ". ", ".\n\n")
	if financialMention.MatchString(text) {
		text += linkedInDisclaimer
	}
	return text
}

func styleFacebook(text string) string {
	text = facebookRewrites.Replace(text)
	if !strings.Contains(text, "?") {
		text += facebookQuestion
	}
	return text
}

func styleInstagram(text string) string {
	for _, e := range instagramEmojis {
		text = e.pattern.ReplaceAllString(text, e.replacement)
	}

	// Only the first sentence shows in the feed preview.
	first, rest := text, ""
	if loc := firstSentenceEnd.FindStringIndex(text); loc != nil {
		first, rest = text[:loc[0]+1], text[loc[0]+1:]
	}
	if utf8.RuneCountInString(first) > instagramPreviewLimit {
		runes := []rune(first)
		first = string(runes[:instagramShortenedFirst]) + instagramMoreMarker
	}
	return first + rest
}

// stripFillerWords removes "the", "that" and "very" while leaving the firm
// name intact.
func stripFillerWords(text, firmName string) string {
	var b strings.Builder
	last := 0
	for _, loc := range twitterFiller.FindAllStringIndex(text, -1) {
		if firmName != "" && strings.HasPrefix(text[loc[0]:], firmName) {
			continue
		}
		b.WriteString(text[last:loc[0]])
		last = loc[1]
	}
	b.WriteString(text[last:])
	return strings.TrimSpace(repeatedSpaces.ReplaceAllString(b.String(), " "))
}
