package research

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/thewell/content-studio/internal/fetch"
	"github.com/thewell/content-studio/internal/llm"
	"github.com/thewell/content-studio/internal/prompts"
)

// Defaults for Options.
const (
	DefaultConcurrency     = 4
	DefaultMaxItemsPerFeed = 20
	DefaultExcerptLength   = 600
	DefaultSearchResults   = 5
	maxMarkdownRunes       = 8000
	maxSummaryInputRunes   = 1500
)

// Options configures a Researcher.
type Options struct {
	Concurrency     int
	MaxItemsPerFeed int
	ExcerptLength   int
	FetchOptions    *fetch.Options
	UseBrowser      bool
	CacheTTL        time.Duration
	// ExcludeDomains drops search results from these domains, typically the firm's own site.
	ExcludeDomains []string
	LLM            llm.Client
	Searcher       Searcher
	Logger         *zap.Logger
}

// Researcher runs research requests. It is safe for concurrent use.
type Researcher struct {
	opts     Options
	cache    *fetch.Cache
	markdown *converter.Converter
	logger   *zap.Logger
}

// New creates a Researcher, filling zero options with defaults.
func New(opts Options) *Researcher {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.MaxItemsPerFeed <= 0 {
		opts.MaxItemsPerFeed = DefaultMaxItemsPerFeed
	}
	if opts.ExcerptLength <= 0 {
		opts.ExcerptLength = DefaultExcerptLength
	}
	if opts.FetchOptions == nil {
		opts.FetchOptions = fetch.DefaultOptions()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Researcher{
		opts:   opts,
		logger: logger,
		markdown: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
	r.cache = fetch.NewCache(func(ctx context.Context, urlStr string) (*fetch.Result, error) {
		return fetch.Page(ctx, urlStr, opts.FetchOptions, opts.UseBrowser, logger)
	}, opts.CacheTTL)
	return r
}

// Run executes a research request. Individual page and feed failures are
// recorded on their sources; only cancellation or an invalid request fails the run.
func (r *Researcher) Run(ctx context.Context, req Request) (*Result, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, &RequestError{Message: "query is required"}
	}

	result := &Result{Query: query}
	urls := DedupeURLs(req.URLs)

	if req.Search {
		if r.opts.Searcher == nil {
			result.Warnings = append(result.Warnings, "search requested but no search engine is configured")
		} else {
			found, err := r.opts.Searcher.Search(ctx, query, DefaultSearchResults)
			if err != nil {
				r.logger.Warn("research search failed", zap.String("query", query), zap.Error(err))
				result.Warnings = append(result.Warnings, fmt.Sprintf("search failed: %v", err))
			}
			for _, u := range found {
				if !IsFromDomain(u, r.opts.ExcludeDomains) {
					urls = append(urls, u)
				}
			}
			urls = DedupeURLs(urls)
		}
	}

	feeds := DedupeURLs(req.Feeds)
	if len(urls) == 0 && len(feeds) == 0 {
		return nil, &RequestError{Message: "at least one URL or feed is required"}
	}

	pages := make([]Source, len(urls))
	feedItems := make([][]Source, len(feeds))
	terms := QueryTerms(query)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)
	for i, u := range urls {
		g.Go(func() error {
			pages[i] = r.page(gctx, u)
			return gctx.Err()
		})
	}
	for i, f := range feeds {
		g.Go(func() error {
			feedItems[i] = r.feed(gctx, f, terms)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("research cancelled: %w", err)
	}

	result.Sources = append(result.Sources, pages...)
	for _, items := range feedItems {
		result.Sources = append(result.Sources, items...)
	}

	if req.Summarize {
		r.summarize(ctx, result)
	}

	r.logger.Info("research completed",
		zap.String("query", query),
		zap.Int("sources", len(result.Sources)),
		zap.Int("warnings", len(result.Warnings)))
	return result, nil
}

func (r *Researcher) page(ctx context.Context, urlStr string) Source {
	src := Source{URL: urlStr, Kind: KindPage, Publisher: string(fetch.DetectPublisher(urlStr))}

	page, cached, err := r.cache.Fetch(ctx, urlStr)
	if err != nil {
		src.Error = err.Error()
		r.logger.Debug("research page failed", zap.String("url", urlStr), zap.Error(err))
		return src
	}
	src.FromCache = cached
	src.Title = page.Title

	text := page.Text
	if parsed, perr := url.Parse(urlStr); perr == nil {
		if article, aerr := readability.FromReader(strings.NewReader(page.HTML), parsed); aerr == nil {
			if t := strings.TrimSpace(article.TextContent); len(t) > 100 {
				text = t
			}
		}
	}
	src.Excerpt = excerpt(text, r.opts.ExcerptLength)

	publisher := fetch.DetectPublisher(urlStr)
	if mainHTML, herr := fetch.ExtractMainHTML(page.HTML, fetch.PublisherContentSelectors(publisher), fetch.PublisherNoiseSelectors(publisher)...); herr == nil {
		src.Markdown = r.toMarkdown(mainHTML, urlStr)
	}
	return src
}

func (r *Researcher) feed(ctx context.Context, feedURL string, terms []string) []Source {
	parser := gofeed.NewParser()
	if r.opts.FetchOptions.Client != nil {
		parser.Client = r.opts.FetchOptions.Client
	}
	parser.UserAgent = fetch.DefaultUserAgent

	feed, err := parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		r.logger.Debug("research feed failed", zap.String("feed", feedURL), zap.Error(err))
		return []Source{{URL: feedURL, Kind: KindFeedItem, Error: err.Error()}}
	}

	var items []Source
	for _, item := range feed.Items {
		if len(items) >= r.opts.MaxItemsPerFeed {
			break
		}
		link := item.Link
		if link == "" {
			link = item.GUID
		}
		title := strings.TrimSpace(item.Title)
		if link == "" || title == "" {
			continue
		}

		body := item.Content
		if body == "" {
			body = item.Description
		}
		text := r.toMarkdown(body, link)
		if !MatchesTerms(title+" "+text, terms) {
			continue
		}

		src := Source{
			URL:       link,
			Title:     title,
			Kind:      KindFeedItem,
			Publisher: string(fetch.DetectPublisher(link)),
			Excerpt:   excerpt(text, r.opts.ExcerptLength),
		}
		if item.PublishedParsed != nil {
			src.Published = item.PublishedParsed.UTC().Format("2006-01-02")
		} else if item.UpdatedParsed != nil {
			src.Published = item.UpdatedParsed.UTC().Format("2006-01-02")
		}
		items = append(items, src)
	}
	return items
}

// toMarkdown converts an HTML fragment to Markdown, falling back to the input.
func (r *Researcher) toMarkdown(html, sourceURL string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	md, err := r.markdown.ConvertString(html, converter.WithDomain(sourceURL))
	if err != nil || strings.TrimSpace(md) == "" {
		return strings.TrimSpace(html)
	}
	md = strings.TrimSpace(md)
	if runes := []rune(md); len(runes) > maxMarkdownRunes {
		md = string(runes[:maxMarkdownRunes])
	}
	return md
}

type summaryResponse struct {
	Summary       string   `json:"summary"`
	TalkingPoints []string `json:"talking_points"`
}

// summarize asks the model for a summary. Failures become warnings.
func (r *Researcher) summarize(ctx context.Context, result *Result) {
	if r.opts.LLM == nil {
		result.Warnings = append(result.Warnings, "summary requested but no language model is configured")
		return
	}

	var b strings.Builder
	n := 0
	for _, src := range result.Sources {
		if !src.OK() || src.Excerpt == "" {
			continue
		}
		n++
		body := src.Markdown
		if body == "" {
			body = src.Excerpt
		}
		if runes := []rune(body); len(runes) > maxSummaryInputRunes {
			body = string(runes[:maxSummaryInputRunes])
		}
		fmt.Fprintf(&b, "[%d] %s (%s)\n%s\n\n", n, src.Title, src.URL, body)
	}
	if n == 0 {
		result.Warnings = append(result.Warnings, "no usable sources to summarize")
		return
	}

	input, err := prompts.Render("research.json", "summary-request", map[string]string{
		"Query":   result.Query,
		"Sources": strings.TrimSpace(b.String()),
	})
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("summary failed: %v", err))
		return
	}

	raw, err := r.opts.LLM.GenerateJSON(ctx, llm.BuildExtractionPrompt(llm.ResearchSummarySchema(), input), llm.TierLite)
	if err != nil {
		r.logger.Warn("research summary failed", zap.Error(err))
		result.Warnings = append(result.Warnings, fmt.Sprintf("summary failed: %v", err))
		return
	}

	var resp summaryResponse
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(raw)), &resp); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("summary response was not valid JSON: %v", err))
		return
	}
	result.Summary = strings.TrimSpace(resp.Summary)
	result.TalkingPoints = resp.TalkingPoints
}
