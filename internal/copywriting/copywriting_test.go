package copywriting

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thewell/content-studio/internal/brand"
	"github.com/thewell/content-studio/internal/charts"
	"github.com/thewell/content-studio/internal/llm"
	"github.com/thewell/content-studio/internal/optimizer"
	"github.com/thewell/content-studio/internal/types"
)

// scriptedClient returns queued text responses in order.
type scriptedClient struct {
	mu      sync.Mutex
	texts   []string
	prompts []string
}

func (s *scriptedClient) GenerateContent(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	if len(s.texts) == 0 {
		return "", errors.New("no scripted response")
	}
	text := s.texts[0]
	s.texts = s.texts[1:]
	return text, nil
}

func (s *scriptedClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return s.GenerateContent(ctx, prompt, tier)
}

func (s *scriptedClient) Chat(ctx context.Context, _ string, _ []llm.Turn, message string, tier llm.ModelTier) (string, error) {
	return s.GenerateContent(ctx, message, tier)
}

func (s *scriptedClient) GetModel(llm.ModelTier) string { return "scripted" }

func (s *scriptedClient) Close() error { return nil }

func newWriter(t *testing.T, client llm.Client) *Writer {
	t.Helper()
	w, err := New(client, brand.Default(), nil)
	require.NoError(t, err)
	return w
}

func TestNew_RequiresClient(t *testing.T) {
	_, err := New(nil, brand.Default(), nil)
	var apiErr *APICallError
	assert.ErrorAs(t, err, &apiErr)
}

func TestDraftCopy_Clean(t *testing.T) {
	client := &llm.FakeClient{Text: `"Independent advisors deserve a partner who listens."`}
	w := newWriter(t, client)

	draft, err := w.DraftCopy(context.Background(), DraftRequest{Topic: "Why advisors go independent", Platform: "LinkedIn"})
	require.NoError(t, err)

	assert.Equal(t, optimizer.LinkedIn, draft.Platform)
	assert.Equal(t, "Independent advisors deserve a partner who listens.", draft.Raw)
	assert.False(t, draft.Rewritten)
	assert.Empty(t, draft.Violations)
	require.NotNil(t, draft.Optimized)
	assert.Contains(t, draft.Optimized.OptimizedContent, "thewell.solutions")

	prompt := client.LastPrompt()
	assert.Contains(t, prompt, "Why advisors go independent")
	assert.Contains(t, prompt, "LinkedIn")
	assert.Contains(t, prompt, "3000")
	assert.Contains(t, prompt, DefaultAudience)
	assert.Contains(t, prompt, "The Well")
}

func TestDraftCopy_RewritesNonCompliantDraft(t *testing.T) {
	client := &scriptedClient{texts: []string{
		"Our clients enjoy guaranteed returns every year.",
		"Our clients value a disciplined, transparent process.",
	}}
	w := newWriter(t, client)

	draft, err := w.DraftCopy(context.Background(), DraftRequest{Topic: "client outcomes", Platform: optimizer.Facebook})
	require.NoError(t, err)

	assert.True(t, draft.Rewritten)
	assert.Empty(t, draft.Violations)
	assert.Contains(t, draft.Optimized.OptimizedContent, "disciplined, transparent process")
	require.Len(t, client.prompts, 2)
	assert.Contains(t, client.prompts[1], "Guaranteed-return")
	assert.Contains(t, client.prompts[1], "guaranteed returns every year")
}

func TestDraftCopy_KeepsFindingsWhenRewriteDoesNotHelp(t *testing.T) {
	bad := "Our clients enjoy guaranteed returns every year."
	w := newWriter(t, &llm.FakeClient{Text: bad})

	draft, err := w.DraftCopy(context.Background(), DraftRequest{Topic: "client outcomes", Platform: optimizer.LinkedIn})
	require.NoError(t, err)

	assert.False(t, draft.Rewritten)
	require.NotEmpty(t, draft.Violations)
	assert.Equal(t, optimizer.RuleGuaranteedReturn, draft.Violations[0].RuleID)
	assert.Equal(t, types.SourceLocal, draft.Violations[0].Source)
}

func TestDraftCopy_RewriteFailureKeepsOriginal(t *testing.T) {
	client := &scriptedClient{texts: []string{"Risk-free growth for every client."}}
	w := newWriter(t, client)

	draft, err := w.DraftCopy(context.Background(), DraftRequest{Topic: "growth", Platform: optimizer.LinkedIn})
	require.NoError(t, err)
	assert.False(t, draft.Rewritten)
	assert.Equal(t, "Risk-free growth for every client.", draft.Raw)
	assert.NotEmpty(t, draft.Violations)
}

func TestDraftCopy_Errors(t *testing.T) {
	boom := errors.New("quota exceeded")

	tests := []struct {
		name   string
		client llm.Client
		req    DraftRequest
		check  func(t *testing.T, err error)
	}{
		{
			name:   "missing topic",
			client: &llm.FakeClient{Text: "x"},
			req:    DraftRequest{Topic: "  ", Platform: optimizer.LinkedIn},
			check: func(t *testing.T, err error) {
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, "topic", ve.Field)
			},
		},
		{
			name:   "unsupported platform",
			client: &llm.FakeClient{Text: "x"},
			req:    DraftRequest{Topic: "t", Platform: "tiktok"},
			check: func(t *testing.T, err error) {
				var upe *optimizer.UnsupportedPlatformError
				assert.ErrorAs(t, err, &upe)
			},
		},
		{
			name:   "model failure",
			client: &llm.FakeClient{Err: boom},
			req:    DraftRequest{Topic: "t", Platform: optimizer.LinkedIn},
			check: func(t *testing.T, err error) {
				var apiErr *APICallError
				require.ErrorAs(t, err, &apiErr)
				assert.ErrorIs(t, err, boom)
			},
		},
		{
			name:   "empty draft",
			client: &llm.FakeClient{Text: "   "},
			req:    DraftRequest{Topic: "t", Platform: optimizer.LinkedIn},
			check: func(t *testing.T, err error) {
				var pe *ParseError
				assert.ErrorAs(t, err, &pe)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newWriter(t, tt.client).DraftCopy(context.Background(), tt.req)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestCleanCopy(t *testing.T) {
	assert.Equal(t, "Hello", cleanCopy(`  "Hello"  `))
	assert.Equal(t, "Hello", cleanCopy("“Hello”"))
	assert.Equal(t, "Hello", cleanCopy("```\nHello\n```"))
	assert.Equal(t, `"`, cleanCopy(`"`))
	assert.Equal(t, `He said "hi"`, cleanCopy(`He said "hi"`))
}

func TestReviewCompliance_MergesFindings(t *testing.T) {
	client := &llm.FakeClient{JSON: "```json\n" + `{
		"compliant": false,
		"findings": [
			{"rule": "Guaranteed returns", "quote": "guaranteed returns", "suggestion": "Remove the promise"},
			{"rule": "Testimonial without disclosure", "quote": "Clients rave about us", "suggestion": "Add a testimonial disclosure"}
		]
	}` + "\n```"}
	w := newWriter(t, client)

	review, err := w.ReviewCompliance(context.Background(), ReviewRequest{
		Content:  "We offer guaranteed returns. Clients rave about us.",
		Platform: "linkedin",
	})
	require.NoError(t, err)

	assert.False(t, review.Compliant)
	require.Len(t, review.Violations, 2)
	assert.Equal(t, optimizer.RuleGuaranteedReturn, review.Violations[0].RuleID)
	assert.Equal(t, types.SourceLocal, review.Violations[0].Source)
	assert.Equal(t, "testimonial_without_disclosure", review.Violations[1].RuleID)
	assert.Equal(t, types.SourceLLM, review.Violations[1].Source)
	assert.Equal(t, types.SeverityWarning, review.Violations[1].Severity)
	assert.Equal(t, "Clients rave about us", review.Violations[1].Excerpt)
	assert.Equal(t, []string{"Add a testimonial disclosure"}, review.Suggestions)

	prompt := client.LastPrompt()
	assert.Contains(t, prompt, "guaranteed_return")
	assert.Contains(t, prompt, "Platform: linkedin")
	assert.Contains(t, prompt, `"findings"`)
}

func TestReviewCompliance_Clean(t *testing.T) {
	w := newWriter(t, &llm.FakeClient{JSON: `{"compliant": true, "findings": []}`})

	review, err := w.ReviewCompliance(context.Background(), ReviewRequest{Content: "We help advisors find the right firm."})
	require.NoError(t, err)
	assert.True(t, review.Compliant)
	assert.NotNil(t, review.Violations)
	assert.Empty(t, review.Violations)
}

func TestReviewCompliance_LocalFindingsOverrideModel(t *testing.T) {
	w := newWriter(t, &llm.FakeClient{JSON: `{"compliant": true, "findings": []}`})

	review, err := w.ReviewCompliance(context.Background(), ReviewRequest{Content: "Buy now before rates change."})
	require.NoError(t, err)
	assert.False(t, review.Compliant)
	require.Len(t, review.Violations, 1)
	assert.Equal(t, optimizer.RuleDirectiveAdvice, review.Violations[0].RuleID)
}

func TestReviewCompliance_Errors(t *testing.T) {
	w := newWriter(t, &llm.FakeClient{JSON: "not json"})

	_, err := w.ReviewCompliance(context.Background(), ReviewRequest{Content: ""})
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = w.ReviewCompliance(context.Background(), ReviewRequest{Content: "hello"})
	var pe *ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestRuleID(t *testing.T) {
	tests := map[string]string{
		"Testimonial without disclosure": "testimonial_without_disclosure",
		"  Misleading  comparison!! ":    "misleading_comparison",
		"FINRA 2210(d)":                  "finra_2210_d",
		"":                               "llm_review",
		"—":                              "llm_review",
	}
	for in, want := range tests {
		assert.Equal(t, want, ruleID(in), in)
	}
}

func TestDesignSpec_SnapsColors(t *testing.T) {
	client := &llm.FakeClient{JSON: `{
		"layout": "Full-bleed dark hero with a gold rule",
		"headline": "Your practice, your terms",
		"background_color": "#050505",
		"accent_color": "#d4af37",
		"text_color": "",
		"chart": {"type": "bar", "labels": ["Base", "Bonus"], "values": [150000, 50000]},
		"notes": ["Keep the logo top-left"]
	}`}
	w := newWriter(t, client)
	cfg := brand.Default()

	spec, err := w.DesignSpec(context.Background(), DesignRequest{Content: "Compensation overview", Medium: "Slides"})
	require.NoError(t, err)

	assert.Equal(t, MediumSlides, spec.Medium)
	assert.Equal(t, cfg.Colors.Primary, spec.BackgroundColor)
	assert.Equal(t, cfg.Colors.Gold, spec.AccentColor)
	assert.Equal(t, cfg.Colors.Text, spec.TextColor)
	assert.Equal(t, []string{"background_color #050505 -> " + cfg.Colors.Primary}, spec.Adjustments)
	assert.Equal(t, cfg.Fonts.Heading, spec.HeadingFont)
	assert.Equal(t, cfg.Fonts.Slide, spec.BodyFont)
	require.NotNil(t, spec.Chart)
	assert.Equal(t, charts.TypeBar, spec.Chart.Type)

	for _, c := range []string{spec.BackgroundColor, spec.AccentColor, spec.TextColor} {
		assert.True(t, cfg.IsBrandColor(c), c)
	}
	assert.Contains(t, client.LastPrompt(), cfg.Colors.Cyan)
}

func TestDesignSpec_DropsInvalidChart(t *testing.T) {
	w := newWriter(t, &llm.FakeClient{JSON: `{
		"layout": "Simple",
		"headline": "Hi",
		"background_color": "not a color",
		"accent_color": "#00d4ff",
		"text_color": "#fefefe",
		"chart": {"type": "radar", "labels": ["a"], "values": [1]}
	}`})
	cfg := brand.Default()

	spec, err := w.DesignSpec(context.Background(), DesignRequest{Content: "x", Medium: MediumSocial})
	require.NoError(t, err)
	assert.Nil(t, spec.Chart)
	require.NotEmpty(t, spec.Notes)
	assert.True(t, strings.HasPrefix(spec.Notes[len(spec.Notes)-1], "Proposed chart omitted"))
	assert.Equal(t, cfg.Colors.Primary, spec.BackgroundColor)
	assert.Equal(t, cfg.Colors.Text, spec.TextColor)
	assert.Equal(t, cfg.Fonts.Family, spec.BodyFont)
	assert.Len(t, spec.Adjustments, 2)
}

func TestDesignSpec_Errors(t *testing.T) {
	w := newWriter(t, &llm.FakeClient{JSON: "{"})

	var ve *ValidationError
	_, err := w.DesignSpec(context.Background(), DesignRequest{Content: "x", Medium: "billboard"})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "medium", ve.Field)

	_, err = w.DesignSpec(context.Background(), DesignRequest{Medium: MediumPrint})
	assert.ErrorAs(t, err, &ve)

	var pe *ParseError
	_, err = w.DesignSpec(context.Background(), DesignRequest{Content: "x", Medium: MediumPrint})
	assert.ErrorAs(t, err, &pe)
}
