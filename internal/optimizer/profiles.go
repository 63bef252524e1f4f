package optimizer

import (
	"github.com/thewell/content-studio/internal/brand"
)

// PlatformID identifies a social platform.
type PlatformID string

// Supported platforms.
const (
	LinkedIn  PlatformID = "linkedin"
	Facebook  PlatformID = "facebook"
	Twitter   PlatformID = "twitter"
	Instagram PlatformID = "instagram"
)

// ContentType selects which character limit applies.
type ContentType string

// Content types.
const (
	ContentPost    ContentType = "post"
	ContentArticle ContentType = "article"
)

// HashtagStyle names a platform's default hashtag set.
type HashtagStyle string

// Hashtag styles.
const (
	StyleProfessional HashtagStyle = "professional"
	StyleCasual       HashtagStyle = "casual"
	StyleTrending     HashtagStyle = "trending"
	StyleMixed        HashtagStyle = "mixed"
)

// platformOrder is the order platforms are listed in errors and batch results.
var platformOrder = []PlatformID{LinkedIn, Facebook, Twitter, Instagram}

// Profile is the static rule set for one platform.
type Profile struct {
	ID                  PlatformID   `json:"id"`
	Name                string       `json:"name"`
	PostLimit           int          `json:"post_character_limit"`
	ArticleLimit        int          `json:"article_character_limit,omitempty"`
	HashtagLimit        int          `json:"hashtag_count_limit"`
	OptimalHashtags     int          `json:"optimal_hashtag_count,omitempty"`
	HashtagStyle        HashtagStyle `json:"hashtag_style"`
	BestPractices       []string     `json:"best_practices"`
	ForbiddenCategories []string     `json:"forbidden_phrase_categories"`
	BestTime            string       `json:"best_time"`
	CTA                 string       `json:"cta"`
	Signature           string       `json:"signature"`
	ContinuationMarker  string       `json:"continuation_marker"`
}

// Limit returns the character limit for a content type. Articles fall back to
// the post limit on platforms without an article format.
func (p Profile) Limit(contentType ContentType) int {
	if contentType == ContentArticle && p.ArticleLimit > 0 {
		return p.ArticleLimit
	}
	return p.PostLimit
}

// RecommendedHashtagCap is the optimal hashtag count when the platform defines
// one, otherwise the hard limit.
func (p Profile) RecommendedHashtagCap() int {
	if p.OptimalHashtags > 0 && p.OptimalHashtags < p.HashtagLimit {
		return p.OptimalHashtags
	}
	return p.HashtagLimit
}

func (p Profile) clone() Profile {
	out := p
	out.BestPractices = append([]string(nil), p.BestPractices...)
	out.ForbiddenCategories = append([]string(nil), p.ForbiddenCategories...)
	return out
}

var forbiddenCategories = []string{
	"Guaranteed returns or risk-free claims",
	"Directive investment advice without a disclaimer",
	"Performance statistics without attribution",
}

// buildProfiles renders the platform rule set for a brand. CTA lines carry the
// domain and no firm name; signatures carry the firm name and no domain.
func buildProfiles(b brand.Config) map[PlatformID]Profile {
	return map[PlatformID]Profile{
		LinkedIn: {
			ID:           LinkedIn,
			Name:         "LinkedIn",
			PostLimit:    3000,
			ArticleLimit: 125000,
			HashtagLimit: 5,
			HashtagStyle: StyleProfessional,
			BestPractices: []string{
				"Open with a strong hook in the first two lines",
				"Use short paragraphs and bullet points for readability",
				"Share industry insight rather than pure promotion",
				"End with a question to invite professional discussion",
				"Use 3-5 relevant hashtags",
			},
			ForbiddenCategories: forbiddenCategories,
			BestTime:            "Tuesday-Thursday, 8-10 AM and 12 PM",
			CTA:                 "\n\nExplore confidential career opportunities at https://" + b.Domain,
			Signature:           "\n\n" + b.FirmName + " | " + b.Tagline,
			ContinuationMarker:  "\n\n[Read more...]",
		},
		Facebook: {
			ID:              Facebook,
			Name:            "Facebook",
			PostLimit:       63206,
			HashtagLimit:    10,
			OptimalHashtags: 2,
			HashtagStyle:    StyleCasual,
			BestPractices: []string{
				"Keep posts conversational and approachable",
				"Ask questions to drive comments",
				"Posts between 40 and 80 characters get the most engagement",
				"Use 1-2 hashtags at most",
			},
			ForbiddenCategories: forbiddenCategories,
			BestTime:            "Wednesday-Friday, 1-4 PM",
			CTA:                 "\n\nLearn more: https://" + b.Domain,
			Signature:           "\n\n" + b.FirmName + " | " + b.Tagline,
			ContinuationMarker:  "... See More",
		},
		Twitter: {
			ID:           Twitter,
			Name:         "Twitter/X",
			PostLimit:    280,
			HashtagLimit: 2,
			HashtagStyle: StyleTrending,
			BestPractices: []string{
				"Lead with the key message",
				"Use threads for longer stories",
				"Limit to 1-2 hashtags",
				"Abbreviate where it stays readable",
			},
			ForbiddenCategories: forbiddenCategories,
			BestTime:            "Weekdays, 8-10 AM and 6-9 PM",
			CTA:                 "\n\n" + b.Domain,
			Signature:           "\n- " + b.FirmName,
			ContinuationMarker:  " 🧵",
		},
		Instagram: {
			ID:              Instagram,
			Name:            "Instagram",
			PostLimit:       2200,
			HashtagLimit:    30,
			OptimalHashtags: 11,
			HashtagStyle:    StyleMixed,
			BestPractices: []string{
				"Front-load the caption: only the first 125 characters show before truncation",
				"Use emojis to break up text",
				"Put the link in bio and reference it in the caption",
				"Use around 11 hashtags mixing broad and niche tags",
			},
			ForbiddenCategories: forbiddenCategories,
			BestTime:            "Monday-Friday, 11 AM-1 PM",
			CTA:                 "\n\nLink in bio: " + b.Domain,
			Signature:           "\n\n✨ " + b.FirmName,
			ContinuationMarker:  "\n\n...more in comments",
		},
	}
}
