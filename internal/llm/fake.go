package llm

import (
	"context"
	"sync"
)

// FakeClient is a scripted Client for tests. Responses are keyed by the
// method called; Err, when set, is returned from every call.
type FakeClient struct {
	Text string
	JSON string
	Err  error

	mu      sync.Mutex
	Prompts []string
	History [][]Turn
}

var _ Client = (*FakeClient)(nil)

func (f *FakeClient) record(prompt string, history []Turn) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Prompts = append(f.Prompts, prompt)
	if history != nil {
		f.History = append(f.History, append([]Turn(nil), history...))
	}
}

// LastPrompt returns the most recent prompt or chat message.
func (f *FakeClient) LastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Prompts) == 0 {
		return ""
	}
	return f.Prompts[len(f.Prompts)-1]
}

// GenerateContent implements Client.
func (f *FakeClient) GenerateContent(_ context.Context, prompt string, _ ModelTier) (string, error) {
	f.record(prompt, nil)
	if f.Err != nil {
		return "", f.Err
	}
	return f.Text, nil
}

// GenerateJSON implements Client.
func (f *FakeClient) GenerateJSON(_ context.Context, prompt string, _ ModelTier) (string, error) {
	f.record(prompt, nil)
	if f.Err != nil {
		return "", f.Err
	}
	return CleanJSONBlock(f.JSON), nil
}

// Chat implements Client.
func (f *FakeClient) Chat(_ context.Context, _ string, history []Turn, message string, _ ModelTier) (string, error) {
	if history == nil {
		history = []Turn{}
	}
	f.record(message, history)
	if f.Err != nil {
		return "", f.Err
	}
	return f.Text, nil
}

// GetModel implements Client.
func (f *FakeClient) GetModel(ModelTier) string { return "fake" }

// Close implements Client.
func (f *FakeClient) Close() error { return nil }
