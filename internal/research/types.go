// Package research gathers industry material for content authors: pages,
// feed items and optional search results, condensed into talking points.
package research

import "fmt"

// Source kinds.
const (
	KindPage     = "page"
	KindFeedItem = "feed_item"
)

// Request describes one research run.
type Request struct {
	Query     string   `json:"query" validate:"required,max=500"`
	URLs      []string `json:"urls,omitempty" validate:"max=20,dive,url"`
	Feeds     []string `json:"feeds,omitempty" validate:"max=20,dive,url"`
	Search    bool     `json:"search,omitempty"`
	Summarize bool     `json:"summarize,omitempty"`
}

// Source is one fetched page or matching feed item.
type Source struct {
	URL       string `json:"url"`
	Title     string `json:"title,omitempty"`
	Kind      string `json:"kind"`
	Publisher string `json:"publisher,omitempty"`
	Excerpt   string `json:"excerpt,omitempty"`
	Markdown  string `json:"markdown,omitempty"`
	Published string `json:"published,omitempty"`
	FromCache bool   `json:"from_cache,omitempty"`
	Error     string `json:"error,omitempty"`
}

// OK reports whether the source was fetched successfully.
func (s Source) OK() bool { return s.Error == "" }

// Result is the outcome of a research run.
type Result struct {
	Query         string   `json:"query"`
	Sources       []Source `json:"sources"`
	Summary       string   `json:"summary,omitempty"`
	TalkingPoints []string `json:"talking_points,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
}

// RequestError reports an unusable research request.
type RequestError struct {
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("invalid research request: %s", e.Message)
}
