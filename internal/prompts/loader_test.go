package prompts

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var placeholder = regexp.MustCompile(`{{\.(\w+)}}`)

func TestGet(t *testing.T) {
	prompt, err := Get("copywriting.json", "draft-copy")
	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.Topic}}")

	_, err = Get("nonexistent.json", "draft-copy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prompt file nonexistent.json not found")

	_, err = Get("copywriting.json", "nonexistent-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `prompt key "nonexistent-key" not found`)
}

func TestRender(t *testing.T) {
	out, err := Render("research.json", "summary-request", map[string]string{
		"Query":   "advisor breakaways",
		"Sources": "[1] https://example.com",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "advisor breakaways")
	assert.Contains(t, out, "[1] https://example.com")
	assert.NotContains(t, out, "{{")
}

func TestRender_MissingValue(t *testing.T) {
	_, err := Render("research.json", "summary-request", map[string]string{"Query": "only the query"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "research.json/summary-request")
}

func TestRender_ValuesAreNotExpanded(t *testing.T) {
	out, err := Render("compliance.json", "review-context", map[string]string{
		"Platform":    "linkedin",
		"KnownIssues": "none",
		"Content":     "Copy that mentions {{.Platform}} literally",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Copy that mentions {{.Platform}} literally")
}

func TestKeys(t *testing.T) {
	keys, err := Keys("copywriting.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"draft-copy", "rewrite-compliant"}, keys)

	_, err = Keys("nonexistent.json")
	assert.Error(t, err)
}

func TestEveryPromptRenders(t *testing.T) {
	for _, file := range []string{"chat.json", "compliance.json", "copywriting.json", "design.json", "research.json"} {
		keys, err := Keys(file)
		require.NoError(t, err, file)
		for _, key := range keys {
			text, err := Get(file, key)
			require.NoError(t, err)

			data := map[string]string{}
			for _, m := range placeholder.FindAllStringSubmatch(text, -1) {
				data[m[1]] = "<" + m[1] + ">"
			}
			out, err := Render(file, key, data)
			require.NoError(t, err, "%s/%s", file, key)
			assert.NotEmpty(t, out)
			assert.NotContains(t, out, "{{", "%s/%s", file, key)
		}
	}
}
