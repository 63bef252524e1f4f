package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thewell/content-studio/internal/assembly"
	"github.com/thewell/content-studio/internal/brand"
	"github.com/thewell/content-studio/internal/copywriting"
	"github.com/thewell/content-studio/internal/optimizer"
	"github.com/thewell/content-studio/internal/research"
	"github.com/thewell/content-studio/internal/types"
)

func newTestPrinter() (*Printer, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewPrinter(&buf, brand.Default()), &buf
}

func TestPrintOptimization(t *testing.T) {
	p, buf := newTestPrinter()

	result, err := optimizer.Optimize("Advisors deserve a better path.", optimizer.LinkedIn, optimizer.ContentPost)
	assert.NoError(t, err)
	p.PrintOptimization(result)
	output := buf.String()

	assert.Contains(t, output, "LINKEDIN")
	assert.Contains(t, output, "Characters:")
	assert.Contains(t, output, "3,000")
	assert.Contains(t, output, "#WealthManagement")
	assert.NotContains(t, output, "\x1b[", "no color codes when not a terminal")
}

func TestPrintOptimization_Nil(t *testing.T) {
	p, buf := newTestPrinter()
	p.PrintOptimization(nil)
	assert.Empty(t, buf.String())
}

func TestPrintViolations(t *testing.T) {
	p, buf := newTestPrinter()

	p.PrintViolations(&types.Violations{Violations: []types.Violation{
		{RuleID: "guaranteed_return", Severity: types.SeverityError, Details: "No promises", Source: types.SourceLocal, Excerpt: "risk-free"},
		{RuleID: "testimonial", Severity: types.SeverityWarning, Details: "Add disclosure", Source: types.SourceLLM},
	}})
	output := buf.String()

	assert.Contains(t, output, "COMPLIANCE FINDINGS")
	assert.Contains(t, output, "Found 2 violations")
	assert.Contains(t, output, "guaranteed_return")
	assert.Contains(t, output, `"risk-free"`)
	assert.Contains(t, output, "(llm)")
}

func TestPrintViolations_Empty(t *testing.T) {
	p, buf := newTestPrinter()
	p.PrintViolations(nil)
	assert.Contains(t, buf.String(), "NO VIOLATIONS FOUND")
}

func TestPrintDraft(t *testing.T) {
	p, buf := newTestPrinter()

	result, err := optimizer.Optimize("Short post.", optimizer.Twitter, optimizer.ContentPost)
	assert.NoError(t, err)
	p.PrintDraft(&copywriting.Draft{Platform: optimizer.Twitter, Raw: "orig", Rewritten: true, Optimized: result})
	output := buf.String()

	assert.Contains(t, output, "DRAFT REWRITTEN")
	assert.Contains(t, output, "TWITTER")
	assert.Contains(t, output, "NO VIOLATIONS FOUND")
}

func TestPrintResearch(t *testing.T) {
	p, buf := newTestPrinter()

	sources := []research.Source{{URL: "https://a.example", Title: "Advisor moves"}}
	for i := 0; i < 6; i++ {
		sources = append(sources, research.Source{URL: "https://b.example", Error: "timeout"})
	}
	p.PrintResearch(&research.Result{
		Query:         "advisor recruiting",
		Sources:       sources,
		Summary:       "Moves are up.",
		TalkingPoints: []string{"Breakaways grow"},
		Warnings:      []string{"search unavailable"},
	})
	output := buf.String()

	assert.Contains(t, output, "RESEARCH: ADVISOR RECRUITING")
	assert.Contains(t, output, "Moves are up.")
	assert.Contains(t, output, "Breakaways grow")
	assert.Contains(t, output, "Sources: 7 (6 failed)")
	assert.Contains(t, output, "Advisor moves")
	assert.Contains(t, output, "... and 2 more")
	assert.Contains(t, output, "search unavailable")
}

func TestPrintDocument(t *testing.T) {
	p, buf := newTestPrinter()

	p.PrintDocument(&assembly.Document{
		Format:   assembly.FormatPDF,
		Title:    "Q3 brief",
		Data:     make([]byte, 2048),
		Pages:    3,
		Warnings: []string{"page count"},
	}, "out/q3-brief.pdf")
	output := buf.String()

	assert.Contains(t, output, "Q3 BRIEF")
	assert.Contains(t, output, "2.0 kB")
	assert.Contains(t, output, "Pages:  3")
	assert.Contains(t, output, "out/q3-brief.pdf")
}

func TestShorten(t *testing.T) {
	assert.Equal(t, "abc", shorten("abc", 5))
	assert.Equal(t, "ab...", shorten("abcdefgh", 5))
	assert.Equal(t, 5, len([]rune(shorten(strings.Repeat("é", 10), 5))))
}
