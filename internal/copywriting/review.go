package copywriting

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/thewell/content-studio/internal/llm"
	"github.com/thewell/content-studio/internal/prompts"
	"github.com/thewell/content-studio/internal/types"
)

// ReviewRequest is copy to check before publishing.
type ReviewRequest struct {
	Content  string `json:"content" validate:"required,max=130000"`
	Platform string `json:"platform,omitempty" validate:"max=50"`
}

// Review merges the local rule scan with the model's review.
type Review struct {
	Compliant   bool              `json:"compliant"`
	Violations  []types.Violation `json:"violations"`
	Suggestions []string          `json:"suggestions,omitempty"`
}

type reviewResponse struct {
	Compliant bool `json:"compliant"`
	Findings  []struct {
		Rule       string `json:"rule"`
		Quote      string `json:"quote"`
		Suggestion string `json:"suggestion"`
	} `json:"findings"`
}

// ReviewCompliance checks copy with the local rules, then asks the model for
// anything the rules cannot see. Model findings that quote text the local
// rules already flagged are dropped. Local findings come first.
func (w *Writer) ReviewCompliance(ctx context.Context, req ReviewRequest) (*Review, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, &ValidationError{Field: "content", Message: "content is required"}
	}

	local := w.scanner.Findings(content)
	known := "none"
	if len(local) > 0 {
		lines := make([]string, len(local))
		for i, v := range local {
			lines[i] = fmt.Sprintf("- %s: %q", v.RuleID, v.Excerpt)
		}
		known = strings.Join(lines, "\n")
	}

	input, err := prompts.Render("compliance.json", "review-context", map[string]string{
		"Platform":    orDefault(req.Platform, "unspecified"),
		"KnownIssues": known,
		"Content":     content,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build review prompt: %w", err)
	}
	prompt := llm.BuildExtractionPrompt(llm.ComplianceReviewSchema(), input)

	// Use TierStandard for review (structured output, moderate judgement)
	text, err := w.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, &APICallError{Message: "failed to review copy", Cause: err}
	}
	var resp reviewResponse
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(text)), &resp); err != nil {
		return nil, &ParseError{Message: "failed to parse review response", Cause: err}
	}

	review := &Review{Violations: append([]types.Violation{}, local...)}
	for _, f := range resp.Findings {
		quote := strings.TrimSpace(f.Quote)
		if quote != "" && alreadyFlagged(local, quote) {
			continue
		}
		review.Violations = append(review.Violations, types.Violation{
			RuleID:   ruleID(f.Rule),
			Severity: types.SeverityWarning,
			Details:  strings.TrimSpace(f.Rule),
			Source:   types.SourceLLM,
			Excerpt:  quote,
		})
		if s := strings.TrimSpace(f.Suggestion); s != "" {
			review.Suggestions = append(review.Suggestions, s)
		}
	}
	review.Compliant = len(review.Violations) == 0 && resp.Compliant

	w.logger.Debug("reviewed copy",
		zap.Int("local", len(local)),
		zap.Int("model", len(resp.Findings)),
		zap.Bool("compliant", review.Compliant))
	return review, nil
}

func alreadyFlagged(local []types.Violation, quote string) bool {
	q := strings.ToLower(quote)
	for _, v := range local {
		e := strings.ToLower(v.Excerpt)
		if e != "" && (strings.Contains(q, e) || strings.Contains(e, q)) {
			return true
		}
	}
	return false
}

// ruleID turns a free-form rule name into a stable snake_case ID.
func ruleID(rule string) string {
	fields := strings.FieldsFunc(strings.ToLower(rule), func(r rune) bool {
		return (r < 'a' || r > 'z') && (r < '0' || r > '9')
	})
	if len(fields) == 0 {
		return "llm_review"
	}
	return strings.Join(fields, "_")
}
