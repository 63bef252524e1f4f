// Package copywriting drafts, reviews and designs branded marketing content
// with an LLM, keeping every output inside the local compliance and brand rules.
package copywriting

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/thewell/content-studio/internal/brand"
	"github.com/thewell/content-studio/internal/llm"
	"github.com/thewell/content-studio/internal/optimizer"
	"github.com/thewell/content-studio/internal/prompts"
	"github.com/thewell/content-studio/internal/types"
)

// Default prompt values.
const (
	DefaultAudience = "experienced financial advisors considering a move"
	DefaultTone     = "confident, warm and professional"
)

// Writer produces content in one brand's voice.
type Writer struct {
	client    llm.Client
	brand     brand.Config
	optimizer *optimizer.Optimizer
	scanner   *optimizer.Scanner
	logger    *zap.Logger
}

// New creates a Writer. A nil logger discards logs.
func New(client llm.Client, b brand.Config, logger *zap.Logger) (*Writer, error) {
	if client == nil {
		return nil, &APICallError{Message: "LLM client is required"}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{
		client:    client,
		brand:     b,
		optimizer: optimizer.New(b),
		scanner:   optimizer.NewScanner(),
		logger:    logger,
	}, nil
}

// DraftRequest describes the copy to write.
type DraftRequest struct {
	Topic       string                `json:"topic" validate:"required,max=2000"`
	Platform    optimizer.PlatformID  `json:"platform" validate:"required"`
	Audience    string                `json:"audience,omitempty" validate:"max=500"`
	Tone        string                `json:"tone,omitempty" validate:"max=200"`
	ContentType optimizer.ContentType `json:"content_type,omitempty" validate:"omitempty,oneof=post article"`
}

// Draft is generated copy after compliance handling and platform optimization.
type Draft struct {
	Platform   optimizer.PlatformID `json:"platform"`
	Raw        string               `json:"raw"`
	Rewritten  bool                 `json:"rewritten"`
	Optimized  *optimizer.Result    `json:"optimized"`
	Violations []types.Violation    `json:"violations"`
}

// DraftCopy writes copy for a platform. A draft that trips the local
// compliance rules gets one rewrite attempt; whichever version has fewer
// findings is optimized and returned with its remaining findings.
func (w *Writer) DraftCopy(ctx context.Context, req DraftRequest) (*Draft, error) {
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return nil, &ValidationError{Field: "topic", Message: "topic is required"}
	}
	platform := optimizer.PlatformID(strings.ToLower(strings.TrimSpace(string(req.Platform))))
	profile, err := w.optimizer.Profile(platform)
	if err != nil {
		return nil, err
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = optimizer.ContentPost
	}

	prompt, err := prompts.Render("copywriting.json", "draft-copy", map[string]string{
		"FirmName":      w.brand.FirmName,
		"Domain":        w.brand.Domain,
		"Tagline":       w.brand.Tagline,
		"Platform":      profile.Name,
		"Topic":         topic,
		"Audience":      orDefault(req.Audience, DefaultAudience),
		"Tone":          orDefault(req.Tone, DefaultTone),
		"Limit":         fmt.Sprint(profile.Limit(contentType)),
		"BestPractices": bulletList(profile.BestPractices),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build draft prompt: %w", err)
	}

	// Use TierAdvanced for drafting (requires voice and creativity)
	text, err := w.client.GenerateContent(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return nil, &APICallError{Message: "failed to generate draft", Cause: err}
	}
	raw := cleanCopy(text)
	if raw == "" {
		return nil, &ParseError{Message: "model returned an empty draft"}
	}

	draft := &Draft{Platform: platform, Raw: raw}
	body := raw
	if findings := w.scanner.Findings(raw); len(findings) > 0 {
		rewritten, err := w.rewrite(ctx, profile.Name, raw, findings)
		if err != nil {
			w.logger.Warn("compliance rewrite failed", zap.Error(err))
		} else if rewritten != "" && len(w.scanner.Findings(rewritten)) < len(findings) {
			body = rewritten
			draft.Rewritten = true
		}
	}

	result, err := w.optimizer.Optimize(body, platform, contentType)
	if err != nil {
		return nil, err
	}
	draft.Optimized = result
	draft.Violations = w.scanner.Findings(result.OptimizedContent)

	w.logger.Info("drafted copy",
		zap.String("platform", string(platform)),
		zap.Bool("rewritten", draft.Rewritten),
		zap.Int("violations", len(draft.Violations)),
		zap.Int("characters", result.CharacterCount))
	return draft, nil
}

func (w *Writer) rewrite(ctx context.Context, platform, content string, findings []types.Violation) (string, error) {
	lines := make([]string, len(findings))
	for i, f := range findings {
		lines[i] = fmt.Sprintf("- %s (%q)", f.Details, f.Excerpt)
	}
	prompt, err := prompts.Render("copywriting.json", "rewrite-compliant", map[string]string{
		"Platform": platform,
		"Findings": strings.Join(lines, "\n"),
		"Content":  content,
	})
	if err != nil {
		return "", err
	}
	text, err := w.client.GenerateContent(ctx, prompt, llm.TierStandard)
	if err != nil {
		return "", &APICallError{Message: "failed to rewrite draft", Cause: err}
	}
	return cleanCopy(text), nil
}

// cleanCopy strips whitespace and wrapping quotes models tend to add.
func cleanCopy(text string) string {
	text = llm.StripFence(text)
	for _, q := range []string{`"`, "“"} {
		closing := q
		if q == "“" {
			closing = "”"
		}
		if strings.HasPrefix(text, q) && strings.HasSuffix(text, closing) && len(text) > len(q)+len(closing) {
			text = strings.TrimSpace(text[len(q) : len(text)-len(closing)])
		}
	}
	return text
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}

func bulletList(items []string) string {
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString("- ")
		sb.WriteString(item)
		sb.WriteString("\n")
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
