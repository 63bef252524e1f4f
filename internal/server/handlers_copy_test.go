package server

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thewell/content-studio/internal/brand"
	"github.com/thewell/content-studio/internal/chat"
	"github.com/thewell/content-studio/internal/copywriting"
	"github.com/thewell/content-studio/internal/llm"
	"github.com/thewell/content-studio/internal/optimizer"
	"github.com/thewell/content-studio/internal/types"
)

func TestLLMRoutes_UnavailableWithoutClient(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.login(t, "writer@example.com")

	tests := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodPost, "/v1/copy/draft", map[string]string{"topic": "x", "platform": "linkedin"}},
		{http.MethodPost, "/v1/copy/review", map[string]string{"content": "x"}},
		{http.MethodPost, "/v1/design/spec", map[string]string{"content": "x", "medium": "print"}},
		{http.MethodPost, "/v1/chat", map[string]string{"session_id": "s", "message": "hi"}},
		{http.MethodDelete, "/v1/chat/s", nil},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := env.do(t, tt.method, tt.path, token, tt.body)
			assert.Equal(t, http.StatusServiceUnavailable, w.Code)
			assert.Contains(t, w.Body.String(), errNoLLM)
		})
	}
}

func TestDraftCopy(t *testing.T) {
	fake := &llm.FakeClient{Text: "Thinking about your next chapter? Our advisors help you weigh every option."}
	env := newTestEnv(t, withLLM(fake))
	token, _ := env.login(t, "writer@example.com")

	w := env.do(t, http.MethodPost, "/v1/copy/draft", token, map[string]string{
		"topic":    "Advisor transitions",
		"platform": "LinkedIn",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	draft := decodeJSON[copywriting.Draft](t, w)
	assert.Equal(t, optimizer.LinkedIn, draft.Platform)
	assert.False(t, draft.Rewritten)
	require.NotNil(t, draft.Optimized)
	assert.Contains(t, draft.Optimized.OptimizedContent, "next chapter")
	assert.Equal(t, 1, strings.Count(draft.Optimized.OptimizedContent, "thewell.solutions"))
	assert.Contains(t, fake.LastPrompt(), "Advisor transitions")
}

func TestDraftCopy_Errors(t *testing.T) {
	fake := &llm.FakeClient{Text: "copy"}
	env := newTestEnv(t, withLLM(fake))
	token, _ := env.login(t, "writer@example.com")

	w := env.do(t, http.MethodPost, "/v1/copy/draft", token, map[string]string{"topic": "x", "platform": "myspace"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/v1/copy/draft", token, map[string]string{"platform": "twitter"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	fake.Err = errors.New("quota exhausted")
	w = env.do(t, http.MethodPost, "/v1/copy/draft", token, map[string]string{"topic": "x", "platform": "twitter"})
	assert.Equal(t, http.StatusBadGateway, w.Code)

	fake.Err = nil
	fake.Text = "   "
	w = env.do(t, http.MethodPost, "/v1/copy/draft", token, map[string]string{"topic": "x", "platform": "twitter"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestReviewCopy(t *testing.T) {
	fake := &llm.FakeClient{JSON: "```json\n" + `{"compliant": false, "findings": [
		{"rule": "Fee disclosure", "quote": "no fees", "suggestion": "State the fee schedule."},
		{"rule": "Guarantee", "quote": "guaranteed returns", "suggestion": "Remove the guarantee."}
	]}` + "\n```"}
	env := newTestEnv(t, withLLM(fake))
	token, _ := env.login(t, "writer@example.com")

	w := env.do(t, http.MethodPost, "/v1/copy/review", token, map[string]string{
		"content":  "Clients pay no fees and enjoy guaranteed returns.",
		"platform": "facebook",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	review := decodeJSON[copywriting.Review](t, w)
	assert.False(t, review.Compliant)
	require.Len(t, review.Violations, 2)
	assert.Equal(t, optimizer.RuleGuaranteedReturn, review.Violations[0].RuleID)
	assert.Equal(t, types.SourceLocal, review.Violations[0].Source)
	assert.Equal(t, types.SourceLLM, review.Violations[1].Source)
	assert.Equal(t, "no fees", review.Violations[1].Excerpt)
	assert.Equal(t, []string{"State the fee schedule."}, review.Suggestions)
}

func TestReviewCopy_UnparseableModelOutput(t *testing.T) {
	env := newTestEnv(t, withLLM(&llm.FakeClient{JSON: "not json"}))
	token, _ := env.login(t, "writer@example.com")

	w := env.do(t, http.MethodPost, "/v1/copy/review", token, map[string]string{"content": "Hello"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestDesignSpec(t *testing.T) {
	fake := &llm.FakeClient{JSON: `{
		"layout": "split",
		"headline": "Move with confidence",
		"background_color": "#FF0000",
		"chart": {"type": "pie", "labels": ["a"], "values": [0]}
	}`}
	env := newTestEnv(t, withLLM(fake))
	token, _ := env.login(t, "writer@example.com")

	w := env.do(t, http.MethodPost, "/v1/design/spec", token, map[string]string{
		"content": "Quarterly advisor movement report",
		"medium":  "slides",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	spec := decodeJSON[copywriting.DesignSpec](t, w)
	b := brand.Default()
	assert.Equal(t, "split", spec.Layout)
	assert.True(t, b.IsBrandColor(spec.BackgroundColor))
	assert.Equal(t, b.Colors.Gold, spec.AccentColor)
	assert.Len(t, spec.Adjustments, 1)
	assert.Equal(t, b.Fonts.Heading, spec.HeadingFont)
	assert.Nil(t, spec.Chart)
	assert.NotEmpty(t, spec.Notes)

	w = env.do(t, http.MethodPost, "/v1/design/spec", token, map[string]string{"content": "x", "medium": "billboard"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChat_SessionsPerUser(t *testing.T) {
	fake := &llm.FakeClient{Text: "Happy to help with that."}
	env := newTestEnv(t, withLLM(fake))
	alice, _ := env.login(t, "alice@example.com")
	bob, _ := env.login(t, "bob@example.com")

	send := func(token, session, message string) chat.Reply {
		t.Helper()
		w := env.do(t, http.MethodPost, "/v1/chat", token, map[string]string{"session_id": session, "message": message})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		return decodeJSON[chat.Reply](t, w)
	}

	first := send(alice, "draft-1", "Help me write a cover page")
	assert.Equal(t, "draft-1", first.SessionID)
	assert.Equal(t, "Happy to help with that.", first.Message)
	assert.Equal(t, 2, first.Turns)

	assert.Equal(t, 4, send(alice, "draft-1", "Shorter please").Turns)
	assert.Equal(t, 2, send(bob, "draft-1", "Hello").Turns, "same session id, different user")

	w := env.do(t, http.MethodDelete, "/v1/chat/draft-1", alice, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 2, send(alice, "draft-1", "Start over").Turns)
	assert.Equal(t, 4, send(bob, "draft-1", "Still here?").Turns)
}

func TestChat_Errors(t *testing.T) {
	fake := &llm.FakeClient{Text: "ok"}
	env := newTestEnv(t, withLLM(fake))
	token, _ := env.login(t, "alice@example.com")

	w := env.do(t, http.MethodPost, "/v1/chat", token, map[string]string{"session_id": "s"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/v1/chat", token, map[string]string{"session_id": "s", "message": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	fake.Err = &llm.APICallError{Operation: "chat", Cause: errors.New("upstream timeout")}
	w = env.do(t, http.MethodPost, "/v1/chat", token, map[string]string{"session_id": "s", "message": "hi"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
