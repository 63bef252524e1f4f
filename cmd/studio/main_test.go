package main

import (
	"bytes"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thewell/content-studio/internal/types"
)

// run executes the CLI with args and returns everything written to stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestOptimize_JSON(t *testing.T) {
	out, err := run(t, "", "optimize", "--platform", "twitter", "--json", "Our firm guarantees 20% returns!")
	require.NoError(t, err)

	var got struct {
		Results []struct {
			Platform         string `json:"platform"`
			OptimizedContent string `json:"optimized_content"`
			CharacterLimit   int    `json:"character_limit"`
		} `json:"results"`
		Violations []types.Violation `json:"violations"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Results, 1)
	assert.Equal(t, "twitter", got.Results[0].Platform)
	assert.Equal(t, 280, got.Results[0].CharacterLimit)
	assert.Contains(t, got.Results[0].OptimizedContent, "thewell.solutions")

	require.Len(t, got.Violations, 2)
	assert.Equal(t, "guaranteed_return", got.Violations[0].RuleID)
	assert.Equal(t, "unattributed_statistic", got.Violations[1].RuleID)
}

func TestOptimize_AllPlatformsFromStdin(t *testing.T) {
	out, err := run(t, "Hello advisors", "optimize", "--json")
	require.NoError(t, err)

	var got struct {
		Results []struct {
			Platform string `json:"platform"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Results, 4)
	assert.Equal(t, "linkedin", got.Results[0].Platform)
	assert.Equal(t, "instagram", got.Results[3].Platform)
}

func TestOptimize_Errors(t *testing.T) {
	_, err := run(t, "", "optimize", "--platform", "myspace", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "myspace")

	_, err = run(t, "   ", "optimize")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no content")
}

func TestScan(t *testing.T) {
	out, err := run(t, "", "scan", "--json", "Risk-free growth for every portfolio.")
	require.NoError(t, err)
	var got types.Violations
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Violations, 1)
	assert.Equal(t, "guaranteed_return", got.Violations[0].RuleID)

	_, err = run(t, "", "scan", "--strict", "Risk-free growth for every portfolio.")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not compliant")

	// Warnings alone do not fail strict mode.
	_, err = run(t, "", "scan", "--strict", "Advisors grew assets 12% last year.")
	require.NoError(t, err)
}

func TestScan_FromFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "post.txt", "Buy now before rates change.")
	out, err := run(t, "", "scan", "--json", "--in", path)
	require.NoError(t, err)
	assert.Contains(t, out, "directive_advice")
}

func TestChart_SVGToStdout(t *testing.T) {
	out, err := run(t, "", "chart", "--type", "bar", "--labels", "Base,Bonus", "--values", "150000,50000")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<svg"))
	assert.Contains(t, out, ">150,000<")
	assert.Contains(t, out, ">Bonus<")
}

func TestChart_PNGToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mix.png")
	out, err := run(t, "", "chart", "--type", "pie", "--labels", "Equities,Bonds,Cash",
		"--values", "60,30,10", "--format", "png", "--width", "320", "--height", "200", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())
}

func TestChart_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"mismatched", []string{"--labels", "a,b", "--values", "1"}},
		{"negative", []string{"--labels", "a", "--values=-1"}},
		{"unknown type", []string{"--type", "radar", "--labels", "a", "--values", "1"}},
		{"unknown format", []string{"--labels", "a", "--values", "1", "--format", "gif"}},
		{"bad number", []string{"--labels", "a", "--values", "lots"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, "", append([]string{"chart"}, tt.args...)...)
			assert.Error(t, err)
		})
	}
}

const sectionsYAML = `
- section_type: role_description
  title: "  Senior Advisor  "
  display_order: 2
  content_data:
    description: Lead a book of high net worth clients.
    compensation:
      base: "$150K - $200K"
      bonus: "$50K"
- section_type: cover
  title: Q3 Opportunity
  display_order: 1
  content_data:
    subtitle: Confidential brief
- section_type: call_to_action
  title: Talk to us
  display_order: 3
  content_data: "Schedule a confidential call."
`

func TestSectionsAndAssemble(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "studio.json", `{
  "local_store": "`+filepath.Join(dir, "sections.db")+`",
  "output_dir": "`+filepath.Join(dir, "out")+`",
  "title": "Q3 Brief"
}`)
	input := writeFile(t, dir, "sections.yaml", sectionsYAML)

	out, err := run(t, "", "--config", cfg, "sections", "import", input)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 3 section(s)")

	out, err = run(t, "", "--config", cfg, "sections", "list", "--json")
	require.NoError(t, err)
	var records []types.ContentRecord
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 3)
	assert.Equal(t, types.SectionCover, records[0].SectionType)
	assert.Equal(t, "Senior Advisor", records[1].Title)
	body, ok := records[1].Body.(types.RoleDescriptionBody)
	require.True(t, ok)
	require.NotNil(t, body.Compensation)
	assert.Equal(t, "$50K", body.Compensation.Bonus)

	_, err = run(t, "", "--config", cfg, "assemble")
	require.NoError(t, err)
	html, err := os.ReadFile(filepath.Join(dir, "out", "q3-brief.html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "Senior Advisor")
	assert.Contains(t, string(html), "Schedule a confidential call.")

	deck := filepath.Join(dir, "deck.pptx")
	_, err = run(t, "", "--config", cfg, "assemble", "--format", "slides", "--ids", records[0].ID.String(), "--out", deck)
	require.NoError(t, err)
	data, err := os.ReadFile(deck)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("PK")))

	_, err = run(t, "", "--config", cfg, "sections", "delete", records[2].ID.String())
	require.NoError(t, err)
	_, err = run(t, "", "--config", cfg, "sections", "delete", records[2].ID.String())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSectionsImport_RejectsWholeFile(t *testing.T) {
	dir := t.TempDir()
	store := filepath.Join(dir, "sections.db")
	input := writeFile(t, dir, "sections.json", `[
  {"section_type": "cover", "title": "Fine", "content_data": {"subtitle": "ok"}},
  {"section_type": "role_description", "title": "Broken", "content_data": {"description": 42}}
]`)

	_, err := run(t, "", "sections", "import", "--store", store, input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "section 2")

	out, err := run(t, "", "sections", "list", "--store", store, "--json")
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(out))
}

func TestAssemble_Errors(t *testing.T) {
	dir := t.TempDir()
	store := filepath.Join(dir, "sections.db")

	_, err := run(t, "", "assemble", "--store", store, "--format", "docx")
	require.Error(t, err)

	_, err = run(t, "", "assemble", "--store", store, "--out", filepath.Join(dir, "empty.html"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no sections")

	_, err = run(t, "", "assemble", "--store", store, "--ids", "not-a-uuid")
	require.Error(t, err)
}

func TestConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "studio.json", `{"format": "docx"}`)
	_, err := run(t, "", "--config", cfg, "scan", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "format")

	_, err = run(t, "", "--config", filepath.Join(dir, "missing.json"), "scan", "hello")
	assert.Error(t, err)
}

func TestRequiresCredentials(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("DATABASE_URL", "")

	_, err := run(t, "", "draft", "advisor transitions")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")

	_, err = run(t, "", "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")

	_, err = run(t, "", "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")

	_, err = run(t, "", "research", "--summarize", "--url", "https://example.com", "advisor moves")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestReadContent(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetIn(strings.NewReader("from stdin"))

	got, err := readContent(cmd, []string{"from", "args"}, "")
	require.NoError(t, err)
	assert.Equal(t, "from args", got)

	got, err = readContent(cmd, nil, "")
	require.NoError(t, err)
	assert.Equal(t, "from stdin", got)

	path := writeFile(t, t.TempDir(), "in.txt", "from file")
	got, err = readContent(cmd, []string{"ignored"}, path)
	require.NoError(t, err)
	assert.Equal(t, "from file", got)
}
