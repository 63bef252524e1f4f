package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectPublisher(t *testing.T) {
	tests := []struct {
		url      string
		expected Publisher
	}{
		{"https://www.finra.org/rules-guidance/notices/23-01", PublisherRegulator},
		{"https://www.sec.gov/news/press-release/2024-1", PublisherRegulator},
		{"https://www.investmentnews.com/industry-news/advisor-moves", PublisherTradePress},
		{"https://www.thinkadvisor.com/2024/01/02/story", PublisherTradePress},
		{"https://www.reuters.com/markets/wealth/", PublisherNews},
		{"https://notfinra.org/page", PublisherUnknown},
		{"https://example.com/blog", PublisherUnknown},
		{"://bad", PublisherUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectPublisher(tt.url))
		})
	}
}

func TestPublisherSelectors(t *testing.T) {
	assert.Contains(t, PublisherContentSelectors(PublisherTradePress), "[itemprop='articleBody']")
	assert.Contains(t, PublisherContentSelectors(PublisherRegulator), ".field--name-body")
	assert.Equal(t, DefaultTextSelectors(), PublisherContentSelectors(PublisherUnknown))

	assert.Contains(t, PublisherNoiseSelectors(PublisherNews), ".paywall")
	assert.Contains(t, PublisherNoiseSelectors(PublisherRegulator), ".usa-banner")
	assert.Contains(t, PublisherNoiseSelectors(PublisherUnknown), ".social-share")
}
