// Package optimizer rewrites copy for social platforms.
//
// Optimize is a pure function of (content, platform, content type). The
// output always carries the firm's domain, stays within the platform's
// character limit (counted in Unicode code points), and is styled for the
// platform. ScanCompliance is a separate check over the original copy.
package optimizer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/thewell/content-studio/internal/brand"
)

// Metadata is the platform-specific extra output of an optimization.
type Metadata struct {
	RecommendedHashtags []string `json:"recommended_hashtags"`
	BestTime            string   `json:"best_time,omitempty"`
	Framing             string   `json:"framing,omitempty"`
	ThreadStrategy      []string `json:"thread_strategy,omitempty"`
	FirstLine           string   `json:"first_line,omitempty"`
}

// Result is the output of Optimize.
type Result struct {
	Platform         PlatformID `json:"platform"`
	OriginalContent  string     `json:"original_content"`
	OptimizedContent string     `json:"optimized_content"`
	Warnings         []string   `json:"warnings"`
	Suggestions      []string   `json:"suggestions"`
	Metadata         Metadata   `json:"metadata"`
	CharacterCount   int        `json:"character_count"`
	CharacterLimit   int        `json:"character_limit"`
}

// Optimizer holds the platform profiles for one brand. It is immutable and
// safe for concurrent use.
type Optimizer struct {
	brand    brand.Config
	profiles map[PlatformID]Profile
}

// New creates an optimizer for a brand.
func New(b brand.Config) *Optimizer {
	return &Optimizer{brand: b, profiles: buildProfiles(b)}
}

var defaultOptimizer = New(brand.Default())

// Optimize rewrites content for a platform using the default brand.
func Optimize(content string, platform PlatformID, contentType ContentType) (*Result, error) {
	return defaultOptimizer.Optimize(content, platform, contentType)
}

// Profiles returns every platform profile in display order.
func (o *Optimizer) Profiles() []Profile {
	out := make([]Profile, 0, len(platformOrder))
	for _, id := range platformOrder {
		out = append(out, o.profiles[id].clone())
	}
	return out
}

// Profile returns the profile for one platform.
func (o *Optimizer) Profile(platform PlatformID) (Profile, error) {
	p, ok := o.profiles[platform]
	if !ok {
		return Profile{}, &UnsupportedPlatformError{Platform: string(platform), Supported: SupportedPlatforms()}
	}
	return p.clone(), nil
}

// SupportedPlatforms lists the platform identifiers Optimize accepts.
func SupportedPlatforms() []string {
	out := make([]string, len(platformOrder))
	for i, id := range platformOrder {
		out[i] = string(id)
	}
	return out
}

// Optimize rewrites content for a platform.
func (o *Optimizer) Optimize(content string, platform PlatformID, contentType ContentType) (*Result, error) {
	profile, ok := o.profiles[PlatformID(strings.ToLower(string(platform)))]
	if !ok {
		return nil, &UnsupportedPlatformError{Platform: string(platform), Supported: SupportedPlatforms()}
	}

	limit := profile.Limit(contentType)
	warnings := []string{}

	working := preTransform(profile.ID, strings.TrimSpace(content))
	out := o.finish(profile, working)

	if profile.ID == Twitter && utf8.RuneCountInString(out) > limit {
		working = stripFillerWords(working, o.brand.FirmName)
		out = o.finish(profile, working)
		warnings = append(warnings, fmt.Sprintf("Removed filler words to fit %s's %d character limit", profile.Name, limit))
	}

	if utf8.RuneCountInString(out) > limit {
		out = o.truncateToFit(profile, working, limit)
		warnings = append(warnings, fmt.Sprintf("Content exceeded %s's %d character limit and was truncated", profile.Name, limit))
	}

	return &Result{
		Platform:         profile.ID,
		OriginalContent:  content,
		OptimizedContent: out,
		Warnings:         warnings,
		Suggestions:      append([]string(nil), profile.BestPractices...),
		Metadata:         buildMetadata(profile, content, out),
		CharacterCount:   utf8.RuneCountInString(out),
		CharacterLimit:   limit,
	}, nil
}

// OptimizeAll runs Optimize for several platforms. An empty platform list
// means every supported platform.
func (o *Optimizer) OptimizeAll(content string, platforms []PlatformID, contentType ContentType) ([]*Result, error) {
	if len(platforms) == 0 {
		platforms = platformOrder
	}
	results := make([]*Result, 0, len(platforms))
	for _, p := range platforms {
		r, err := o.Optimize(content, p, contentType)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

// finish applies the style transform, then the CTA line when the domain is
// missing, then the signature when the firm name is missing. The domain
// match ignores case.
func (o *Optimizer) finish(profile Profile, body string) string {
	out := styleTransform(profile.ID, body)
	if !strings.Contains(strings.ToLower(out), strings.ToLower(o.brand.Domain)) {
		out += profile.CTA
	}
	if !strings.Contains(out, o.brand.FirmName) {
		out += profile.Signature
	}
	return strings.TrimSpace(out)
}

// truncateToFit shrinks the body budget until the finished text fits limit.
// The CTA and signature are added after truncation so they always survive.
func (o *Optimizer) truncateToFit(profile Profile, body string, limit int) string {
	budget := limit
	for {
		out := o.finish(profile, truncate(body, budget, profile.ContinuationMarker))
		over := utf8.RuneCountInString(out) - limit
		if over <= 0 {
			return out
		}
		budget -= over
		if budget <= 0 {
			return hardCut(out, limit)
		}
	}
}

func buildMetadata(profile Profile, original, optimized string) Metadata {
	md := Metadata{
		RecommendedHashtags: recommendHashtags(original, profile.HashtagStyle, profile.RecommendedHashtagCap()),
		BestTime:            profile.BestTime,
	}
	switch profile.ID {
	case LinkedIn:
		md.Framing = "professional discussions"
	case Facebook:
		md.Framing = "community engagement: ask questions and invite shares"
	case Twitter:
		if utf8.RuneCountInString(original) > profile.PostLimit {
			md.ThreadStrategy = threadStrategy(strings.TrimSpace(original))
		}
	case Instagram:
		md.FirstLine = hardCut(optimized, instagramPreviewLimit)
	}
	return md
}
