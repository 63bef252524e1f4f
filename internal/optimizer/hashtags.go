package optimizer

import "regexp"

type keywordTag struct {
	pattern *regexp.Regexp
	tag     string
}

// Topical hashtags, in priority order.
var keywordTags = []keywordTag{
	{regexp.MustCompile(`(?i)\besg\b`), "#ESGInvesting"},
	{regexp.MustCompile(`(?i)\bretire`), "#RetirementPlanning"},
	{regexp.MustCompile(`(?i)\btax`), "#TaxPlanning"},
	{regexp.MustCompile(`(?i)\bestate`), "#EstatePlanning"},
}

var styleTags = map[HashtagStyle][]string{
	StyleProfessional: {
		"#WealthManagement", "#FinancialAdvisor", "#CareerGrowth", "#FinancialServices", "#Leadership",
	},
	StyleCasual: {
		"#CareerMove", "#WealthManagement", "#NowHiring", "#FinancialAdvisor",
	},
	StyleTrending: {
		"#WealthManagement", "#FinTech", "#Hiring",
	},
	StyleMixed: {
		"#WealthManagement", "#FinancialAdvisor", "#CareerGoals", "#FinancialFreedom", "#Advisors",
		"#WealthBuilding", "#CareerMove", "#RIA", "#FinancialPlanning", "#Hiring", "#Leadership", "#Success",
	},
}

// recommendHashtags picks topical tags from the original text first, then
// pads with the platform's style set. The result never exceeds limit.
func recommendHashtags(original string, style HashtagStyle, limit int) []string {
	tags := make([]string, 0, limit)
	seen := make(map[string]bool)
	add := func(tag string) {
		if len(tags) >= limit || seen[tag] {
			return
		}
		seen[tag] = true
		tags = append(tags, tag)
	}

	for _, kt := range keywordTags {
		if kt.pattern.MatchString(original) {
			add(kt.tag)
		}
	}
	for _, tag := range styleTags[style] {
		add(tag)
	}
	return tags
}
