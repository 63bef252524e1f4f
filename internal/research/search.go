// Package research - search.go discovers source URLs with Google Custom Search.
package research

import (
	"context"
	"fmt"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// Searcher finds URLs relevant to a query.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]string, error)
}

// GoogleSearcher implements Searcher with the Custom Search JSON API.
type GoogleSearcher struct {
	svc *customsearch.Service
	cx  string
}

// NewGoogleSearcher creates a searcher for a programmable search engine ID.
func NewGoogleSearcher(ctx context.Context, apiKey, cx string) (*GoogleSearcher, error) {
	if apiKey == "" || cx == "" {
		return nil, fmt.Errorf("search requires an API key and a search engine ID")
	}
	svc, err := customsearch.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create customsearch service: %w", err)
	}
	return &GoogleSearcher{svc: svc, cx: cx}, nil
}

// Search returns up to limit result links (the API allows at most 10).
func (g *GoogleSearcher) Search(ctx context.Context, query string, limit int) ([]string, error) {
	if limit <= 0 || limit > 10 {
		limit = 10
	}
	resp, err := g.svc.Cse.List().Cx(g.cx).Q(query).Num(int64(limit)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	links := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		links = append(links, item.Link)
	}
	return links, nil
}
