// Package observability provides formatted terminal output for CLI commands.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/thewell/content-studio/internal/assembly"
	"github.com/thewell/content-studio/internal/brand"
	"github.com/thewell/content-studio/internal/copywriting"
	"github.com/thewell/content-studio/internal/optimizer"
	"github.com/thewell/content-studio/internal/research"
	"github.com/thewell/content-studio/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output in the brand's colors. Color is dropped
// automatically when out is not a terminal.
type Printer struct {
	out    io.Writer
	box    lipgloss.Style
	title  lipgloss.Style
	muted  lipgloss.Style
	good   lipgloss.Style
	bad    lipgloss.Style
	accent lipgloss.Style
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer, b brand.Config) *Printer {
	r := lipgloss.NewRenderer(out)
	return &Printer{
		out: out,
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(b.Colors.Border)).
			Padding(0, 1).
			Width(boxWidth),
		title:  r.NewStyle().Bold(true).Foreground(lipgloss.Color(b.Colors.Gold)),
		muted:  r.NewStyle().Foreground(lipgloss.Color(b.Colors.TextMuted)),
		good:   r.NewStyle().Foreground(lipgloss.Color(b.Colors.Cyan)),
		bad:    r.NewStyle().Bold(true).Foreground(lipgloss.Color(b.Colors.LightGold)),
		accent: r.NewStyle().Foreground(lipgloss.Color(b.Colors.Gold)),
	}
}

// printBox prints a bordered box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	body := p.title.Render(title)
	if content != "" {
		body += "\n\n" + content
	}
	fmt.Fprintln(p.out, p.box.Render(body))
}

// PrintOptimization outputs an optimized post with its metadata.
func (p *Printer) PrintOptimization(result *optimizer.Result) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(result.OptimizedContent)
	sb.WriteString("\n\n")
	sb.WriteString(p.muted.Render(fmt.Sprintf("Characters: %s / %s",
		humanize.Comma(int64(result.CharacterCount)), humanize.Comma(int64(result.CharacterLimit)))))
	if len(result.Metadata.RecommendedHashtags) > 0 {
		sb.WriteString("\n")
		sb.WriteString(p.accent.Render("Hashtags: " + strings.Join(result.Metadata.RecommendedHashtags, " ")))
	}
	if result.Metadata.BestTime != "" {
		sb.WriteString("\n")
		sb.WriteString(p.muted.Render("Best time: " + result.Metadata.BestTime))
	}
	if n := len(result.Metadata.ThreadStrategy); n > 0 {
		sb.WriteString("\n")
		sb.WriteString(p.muted.Render(fmt.Sprintf("Thread: %d tweets", n)))
	}
	for _, w := range result.Warnings {
		sb.WriteString("\n")
		sb.WriteString(p.bad.Render("⚠ " + w))
	}

	p.printBox(strings.ToUpper(string(result.Platform)), sb.String())
}

// PrintViolations outputs any compliance findings.
func (p *Printer) PrintViolations(violations *types.Violations) {
	if violations == nil || len(violations.Violations) == 0 {
		p.printBox(p.good.Render("✅ NO VIOLATIONS FOUND"), "")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d violations:\n", len(violations.Violations)))

	for _, v := range violations.Violations {
		marker := p.accent.Render("•")
		if v.Severity == types.SeverityError {
			marker = p.bad.Render("⚠")
		}
		sb.WriteString(fmt.Sprintf("\n%s %s", marker, v.RuleID))
		if v.Source != "" {
			sb.WriteString(p.muted.Render(" (" + v.Source + ")"))
		}
		sb.WriteString("\n  " + v.Details)
		if v.Excerpt != "" {
			sb.WriteString(p.muted.Render(fmt.Sprintf("\n  %q", v.Excerpt)))
		}
	}

	p.printBox("COMPLIANCE FINDINGS", sb.String())
}

// PrintDraft outputs generated copy and its compliance status.
func (p *Printer) PrintDraft(draft *copywriting.Draft) {
	if draft == nil {
		return
	}
	if draft.Rewritten {
		p.printBox("DRAFT REWRITTEN FOR COMPLIANCE", p.muted.Render(draft.Raw))
	}
	p.PrintOptimization(draft.Optimized)
	p.PrintViolations(&types.Violations{Violations: draft.Violations})
}

// PrintResearch outputs a research summary and the top sources.
func (p *Printer) PrintResearch(result *research.Result) {
	if result == nil {
		return
	}

	var sb strings.Builder
	if result.Summary != "" {
		sb.WriteString(result.Summary)
		sb.WriteString("\n")
		for _, point := range result.TalkingPoints {
			sb.WriteString("\n• " + point)
		}
		sb.WriteString("\n\n")
	}

	ok := 0
	for _, s := range result.Sources {
		if s.OK() {
			ok++
		}
	}
	sb.WriteString(p.muted.Render(fmt.Sprintf("Sources: %d (%d failed)", len(result.Sources), len(result.Sources)-ok)))

	count := min(len(result.Sources), maxItemsToShow)
	for i := 0; i < count; i++ {
		s := result.Sources[i]
		title := s.Title
		if title == "" {
			title = s.URL
		}
		if !s.OK() {
			sb.WriteString("\n" + p.bad.Render("✗ "+shorten(title, 60)))
			continue
		}
		sb.WriteString("\n" + p.accent.Render("✓ ") + shorten(title, 60))
	}
	if len(result.Sources) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more", len(result.Sources)-maxItemsToShow))
	}
	for _, w := range result.Warnings {
		sb.WriteString("\n" + p.bad.Render("⚠ "+w))
	}

	p.printBox("RESEARCH: "+strings.ToUpper(shorten(result.Query, 40)), sb.String())
}

// PrintDocument outputs where an assembled document was written.
func (p *Printer) PrintDocument(doc *assembly.Document, path string) {
	if doc == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Format: %s\n", doc.Format))
	sb.WriteString(fmt.Sprintf("Size:   %s\n", humanize.Bytes(uint64(len(doc.Data)))))
	if doc.Pages > 0 {
		sb.WriteString(fmt.Sprintf("Pages:  %d\n", doc.Pages))
	}
	sb.WriteString(fmt.Sprintf("Path:   %s", path))
	for _, w := range doc.Warnings {
		sb.WriteString("\n" + p.bad.Render("⚠ "+w))
	}

	p.printBox(strings.ToUpper(doc.Title), sb.String())
}

func shorten(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}
