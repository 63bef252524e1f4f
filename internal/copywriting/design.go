package copywriting

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/thewell/content-studio/internal/charts"
	"github.com/thewell/content-studio/internal/llm"
	"github.com/thewell/content-studio/internal/prompts"
)

// Medium is where a design will be used.
type Medium string

// Supported media.
const (
	MediumSocial Medium = "social"
	MediumPrint  Medium = "print"
	MediumSlides Medium = "slides"
)

// DesignRequest is content to design for.
type DesignRequest struct {
	Content string `json:"content" validate:"required,max=20000"`
	Medium  Medium `json:"medium" validate:"required,oneof=social print slides"`
}

// DesignSpec is a visual treatment restricted to the brand palette.
type DesignSpec struct {
	Medium          Medium       `json:"medium"`
	Layout          string       `json:"layout"`
	Headline        string       `json:"headline"`
	BackgroundColor string       `json:"background_color"`
	AccentColor     string       `json:"accent_color"`
	TextColor       string       `json:"text_color"`
	HeadingFont     string       `json:"heading_font"`
	BodyFont        string       `json:"body_font"`
	Chart           *charts.Spec `json:"chart,omitempty"`
	Notes           []string     `json:"notes,omitempty"`
	// Adjustments lists model colors that were replaced by brand colors.
	Adjustments []string `json:"adjustments,omitempty"`
}

type designResponse struct {
	Layout          string       `json:"layout"`
	Headline        string       `json:"headline"`
	BackgroundColor string       `json:"background_color"`
	AccentColor     string       `json:"accent_color"`
	TextColor       string       `json:"text_color"`
	Chart           *charts.Spec `json:"chart"`
	Notes           []string     `json:"notes"`
}

// DesignSpec asks the model for a visual treatment. Every color is snapped to
// the nearest brand color and fonts always come from the brand. A proposed
// chart that cannot be drawn is dropped with a note.
func (w *Writer) DesignSpec(ctx context.Context, req DesignRequest) (*DesignSpec, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, &ValidationError{Field: "content", Message: "content is required"}
	}
	medium := Medium(strings.ToLower(string(req.Medium)))
	switch medium {
	case MediumSocial, MediumPrint, MediumSlides:
	default:
		return nil, &ValidationError{Field: "medium", Message: fmt.Sprintf("unsupported medium %q", req.Medium)}
	}

	headingFont, bodyFont := w.brand.Fonts.Heading, w.brand.Fonts.Family
	if medium == MediumSlides && w.brand.Fonts.Slide != "" {
		bodyFont = w.brand.Fonts.Slide
	}

	input, err := prompts.Render("design.json", "design-brief", map[string]string{
		"Medium":      string(medium),
		"FirmName":    w.brand.FirmName,
		"Domain":      w.brand.Domain,
		"Palette":     bulletList(w.brand.Palette()),
		"HeadingFont": headingFont,
		"BodyFont":    bodyFont,
		"Content":     content,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build design prompt: %w", err)
	}
	prompt := llm.BuildExtractionPrompt(llm.DesignSpecSchema(), input)

	text, err := w.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, &APICallError{Message: "failed to generate design spec", Cause: err}
	}
	var resp designResponse
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(text)), &resp); err != nil {
		return nil, &ParseError{Message: "failed to parse design response", Cause: err}
	}

	spec := &DesignSpec{
		Medium:      medium,
		Layout:      strings.TrimSpace(resp.Layout),
		Headline:    strings.TrimSpace(resp.Headline),
		HeadingFont: headingFont,
		BodyFont:    bodyFont,
		Notes:       resp.Notes,
	}
	spec.BackgroundColor = w.snap("background_color", resp.BackgroundColor, w.brand.Colors.Primary, &spec.Adjustments)
	spec.AccentColor = w.snap("accent_color", resp.AccentColor, w.brand.Colors.Gold, &spec.Adjustments)
	spec.TextColor = w.snap("text_color", resp.TextColor, w.brand.Colors.Text, &spec.Adjustments)

	if resp.Chart != nil {
		if _, err := charts.New(w.brand).Render(*resp.Chart, 0, 0); err != nil {
			spec.Notes = append(spec.Notes, fmt.Sprintf("Proposed chart omitted: %v", err))
		} else {
			spec.Chart = resp.Chart
		}
	}
	return spec, nil
}

// snap maps color onto the palette, recording any change. An empty color
// takes fallback.
func (w *Writer) snap(field, color, fallback string, adjustments *[]string) string {
	color = strings.TrimSpace(color)
	if color == "" {
		return fallback
	}
	if w.brand.IsBrandColor(color) {
		for _, p := range w.brand.Palette() {
			if strings.EqualFold(p, color) {
				return p
			}
		}
	}
	snapped := w.brand.Nearest(color)
	*adjustments = append(*adjustments, fmt.Sprintf("%s %s -> %s", field, color, snapped))
	return snapped
}
