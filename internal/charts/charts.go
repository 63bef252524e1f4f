// Package charts renders bar, line and pie charts as standalone SVG using
// only brand colors.
package charts

import (
	"encoding/base64"
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/thewell/content-studio/internal/brand"
)

// Type is a chart kind.
type Type string

// Chart kinds.
const (
	TypeBar  Type = "bar"
	TypeLine Type = "line"
	TypePie  Type = "pie"
)

// Default canvas size in pixels.
const (
	DefaultWidth  = 800
	DefaultHeight = 400
)

// Spec is the input to Render.
type Spec struct {
	Type   Type      `json:"type" validate:"required,oneof=bar line pie"`
	Labels []string  `json:"labels" validate:"required,min=1"`
	Values []float64 `json:"values" validate:"required,min=1"`
}

func (s Spec) validate() error {
	switch s.Type {
	case TypeBar, TypeLine, TypePie:
	default:
		return invalidf("unknown chart type %q", s.Type)
	}
	if len(s.Labels) != len(s.Values) {
		return invalidf("%d labels but %d values", len(s.Labels), len(s.Values))
	}
	if len(s.Values) == 0 {
		return invalidf("no data points")
	}
	for i, v := range s.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return invalidf("value %d (%v) must be a finite non-negative number", i, v)
		}
	}
	return nil
}

// Renderer draws charts in one brand's palette. It is immutable and safe for
// concurrent use.
type Renderer struct {
	brand brand.Config
}

// New creates a renderer for a brand.
func New(b brand.Config) *Renderer {
	return &Renderer{brand: b}
}

var defaultRenderer = New(brand.Default())

// Render draws a chart with the default brand.
func Render(spec Spec, width, height int) (string, error) {
	return defaultRenderer.Render(spec, width, height)
}

// Render draws a chart as SVG markup. Zero dimensions fall back to
// DefaultWidth and DefaultHeight.
func (r *Renderer) Render(spec Spec, width, height int) (string, error) {
	if width == 0 {
		width = DefaultWidth
	}
	if height == 0 {
		height = DefaultHeight
	}
	if width < 0 || height < 0 {
		return "", invalidf("negative canvas size %dx%d", width, height)
	}

	switch spec.Type {
	case TypeBar:
		return r.renderBar(spec, width, height)
	case TypeLine:
		return r.renderLine(spec, width, height)
	case TypePie:
		return r.renderPie(spec, width, height)
	}
	return "", spec.validate()
}

// DataURI wraps SVG markup as a base64 data URI for consumers that cannot
// embed markup.
func DataURI(svg string) string {
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg))
}

func (r *Renderer) open(b *strings.Builder, width, height int) {
	fmt.Fprintf(b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="%s">`,
		width, height, width, height, html.EscapeString(r.brand.Fonts.Family))
	fmt.Fprintf(b, `<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`, width, height, r.brand.Colors.Primary)
}

func (r *Renderer) axis(b *strings.Builder, f Frame) {
	fmt.Fprintf(b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="1"/>`,
		f.Padding, f.Baseline(), f.Padding+f.ChartWidth, f.Baseline(), r.brand.Colors.Border)
}

func (r *Renderer) renderBar(spec Spec, width, height int) (string, error) {
	f, bars, err := BarLayout(spec, width, height, r.brand.Spacing.ChartPadding)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	r.open(&b, width, height)
	fmt.Fprintf(&b, `<defs><linearGradient id="bar-gradient" x1="0" y1="0" x2="0" y2="1">`+
		`<stop offset="0%%" stop-color="%s"/><stop offset="100%%" stop-color="%s"/></linearGradient></defs>`,
		r.brand.Colors.LightGold, r.brand.Colors.Gold)
	r.axis(&b, f)

	for _, bar := range bars {
		center := bar.X + bar.Width/2
		fmt.Fprintf(&b, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="url(#bar-gradient)" rx="4"/>`,
			bar.X, bar.Y, bar.Width, bar.Height)
		fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" fill="%s" font-size="14" font-weight="bold" text-anchor="middle">%s</text>`,
			center, bar.Y-8, r.brand.Colors.Text, formatValue(bar.Value))
		fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" fill="%s" font-size="12" text-anchor="middle">%s</text>`,
			center, f.Baseline()+20, r.brand.Colors.TextMuted, html.EscapeString(bar.Label))
	}
	b.WriteString(`</svg>`)
	return b.String(), nil
}

func (r *Renderer) renderLine(spec Spec, width, height int) (string, error) {
	f, points, err := LineLayout(spec, width, height, r.brand.Spacing.ChartPadding)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	r.open(&b, width, height)
	r.axis(&b, f)

	coords := make([]string, len(points))
	for i, p := range points {
		coords[i] = fmt.Sprintf("%.2f,%.2f", p.X, p.Y)
	}
	fmt.Fprintf(&b, `<polyline points="%s" fill="none" stroke="%s" stroke-width="3"/>`,
		strings.Join(coords, " "), r.brand.Colors.Gold)

	for _, p := range points {
		fmt.Fprintf(&b, `<circle cx="%.2f" cy="%.2f" r="5" fill="%s"/>`, p.X, p.Y, r.brand.Colors.Cyan)
		fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" fill="%s" font-size="12" text-anchor="middle">%s</text>`,
			p.X, p.Y-12, r.brand.Colors.Text, formatValue(p.Value))
		fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" fill="%s" font-size="12" text-anchor="middle">%s</text>`,
			p.X, f.Baseline()+20, r.brand.Colors.TextMuted, html.EscapeString(p.Label))
	}
	b.WriteString(`</svg>`)
	return b.String(), nil
}

func (r *Renderer) renderPie(spec Spec, width, height int) (string, error) {
	g, wedges, err := PieLayout(spec, width, height, r.brand.Spacing.ChartPadding)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	r.open(&b, width, height)

	for _, w := range wedges {
		color := r.brand.ChartColor(w.ColorIndex)
		switch {
		case w.Sweep <= 0:
			continue
		case w.Sweep >= 360-1e-9:
			// A lone slice has coincident arc endpoints, which SVG draws as nothing.
			fmt.Fprintf(&b, `<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s" stroke="%s" stroke-width="2"/>`,
				g.CX, g.CY, g.Radius, color, r.brand.Colors.Primary)
		default:
			x1, y1 := g.pointAt(w.StartAngle)
			x2, y2 := g.pointAt(w.StartAngle + w.Sweep)
			large := 0
			if w.LargeArc {
				large = 1
			}
			fmt.Fprintf(&b, `<path d="M %.2f %.2f L %.2f %.2f A %.2f %.2f 0 %d 1 %.2f %.2f Z" fill="%s" stroke="%s" stroke-width="2"/>`,
				g.CX, g.CY, x1, y1, g.Radius, g.Radius, large, x2, y2, color, r.brand.Colors.Primary)
		}
	}
	for _, w := range wedges {
		if w.Sweep <= 0 {
			continue
		}
		fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" fill="%s" font-size="12" font-weight="bold" text-anchor="middle">%s %d%%</text>`,
			w.LabelX, w.LabelY, r.brand.Colors.TextDark, html.EscapeString(w.Label), int(math.Round(w.Percent)))
	}
	b.WriteString(`</svg>`)
	return b.String(), nil
}

// formatValue prints chart values with thousands separators.
func formatValue(v float64) string {
	return humanize.Commaf(math.Round(v*100) / 100)
}
