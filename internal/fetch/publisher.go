// Package fetch - publisher.go classifies research sources and picks selectors per publisher.
package fetch

import (
	"net/url"
	"strings"
)

// Publisher is a known class of research source.
type Publisher string

const (
	// PublisherRegulator covers FINRA, the SEC and state securities regulators.
	PublisherRegulator Publisher = "regulator"
	// PublisherTradePress covers wealth-management trade publications.
	PublisherTradePress Publisher = "trade_press"
	// PublisherNews covers general business news outlets.
	PublisherNews Publisher = "news"
	// PublisherUnknown is an unrecognized source.
	PublisherUnknown Publisher = "unknown"
)

var publisherHosts = map[Publisher][]string{
	PublisherRegulator:  {"finra.org", "sec.gov", "nasaa.org", "cfp.net"},
	PublisherTradePress: {"investmentnews.com", "financial-planning.com", "wealthmanagement.com", "thinkadvisor.com", "advisorhub.com", "riabiz.com", "citywire.com"},
	PublisherNews:       {"reuters.com", "bloomberg.com", "wsj.com", "cnbc.com", "barrons.com", "ft.com"},
}

// DetectPublisher classifies a source URL by host.
func DetectPublisher(urlStr string) Publisher {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PublisherUnknown
	}

	host := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
	for _, p := range []Publisher{PublisherRegulator, PublisherTradePress, PublisherNews} {
		for _, domain := range publisherHosts[p] {
			if host == domain || strings.HasSuffix(host, "."+domain) {
				return p
			}
		}
	}
	return PublisherUnknown
}

// PublisherContentSelectors returns content selectors for a publisher class.
func PublisherContentSelectors(p Publisher) []string {
	switch p {
	case PublisherRegulator:
		return []string{
			".field--name-body",
			"#main-content",
			".usa-layout-docs__main",
			"main",
			"article",
		}
	case PublisherTradePress, PublisherNews:
		return []string{
			"article .article-body",
			".article-content",
			".article__body",
			".story-body",
			"[itemprop='articleBody']",
			"article",
			"main",
		}
	default:
		return DefaultTextSelectors()
	}
}

// PublisherNoiseSelectors returns noise exclusion selectors for a publisher class.
func PublisherNoiseSelectors(p Publisher) []string {
	common := []string{
		// Social and share buttons
		".social-share",
		".share-buttons",
		".social-links",

		// Cookie and GDPR
		".cookie-consent",
		".gdpr-notice",

		// Newsletter prompts
		".newsletter-signup",
		".subscribe",
	}

	switch p {
	case PublisherTradePress, PublisherNews:
		return append(common,
			".related-articles",
			".recommended",
			".paywall",
			".author-bio",
			"aside",
		)
	case PublisherRegulator:
		return append(common,
			".breadcrumb",
			".usa-banner",
		)
	default:
		return common
	}
}
