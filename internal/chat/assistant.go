package chat

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/thewell/content-studio/internal/brand"
	"github.com/thewell/content-studio/internal/llm"
	"github.com/thewell/content-studio/internal/optimizer"
	"github.com/thewell/content-studio/internal/prompts"
	"github.com/thewell/content-studio/internal/types"
)

// MaxMessageLength bounds a single user message, in characters.
const MaxMessageLength = 4000

// Request is a chat message from an author.
type Request struct {
	SessionID string `json:"session_id" validate:"required,max=100"`
	Message   string `json:"message" validate:"required,max=4000"`
}

// Reply is the assistant's answer.
type Reply struct {
	SessionID  string            `json:"session_id"`
	Message    string            `json:"message"`
	Turns      int               `json:"turns"`
	Compliance []types.Violation `json:"compliance,omitempty"`
}

// MessageError reports an unusable chat message.
type MessageError struct {
	Message string
}

func (e *MessageError) Error() string {
	return fmt.Sprintf("invalid chat message: %s", e.Message)
}

// Assistant answers author questions in the brand's voice.
type Assistant struct {
	client  llm.Client
	store   SessionStore
	scanner *optimizer.Scanner
	system  string
	logger  *zap.Logger
}

// NewAssistant creates an assistant. A nil store uses a MemoryStore with
// DefaultMaxTurns; a nil logger discards logs.
func NewAssistant(client llm.Client, store SessionStore, b brand.Config, logger *zap.Logger) (*Assistant, error) {
	if client == nil {
		return nil, fmt.Errorf("assistant requires an LLM client")
	}
	if store == nil {
		store = NewMemoryStore(DefaultMaxTurns)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	system, err := prompts.Render("chat.json", "assistant-system", map[string]string{
		"FirmName": b.FirmName,
		"Domain":   b.Domain,
		"Tagline":  b.Tagline,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load assistant prompt: %w", err)
	}
	return &Assistant{
		client:  client,
		store:   store,
		scanner: optimizer.NewScanner(),
		system:  system,
		logger:  logger,
	}, nil
}

// Reply sends message in a session and records both turns. The answer is
// scanned with the local compliance rules; findings are reported, not removed.
func (a *Assistant) Reply(ctx context.Context, sessionID, message string) (*Reply, error) {
	sessionID = strings.TrimSpace(sessionID)
	message = strings.TrimSpace(message)
	switch {
	case sessionID == "":
		return nil, &MessageError{Message: "session_id is required"}
	case message == "":
		return nil, &MessageError{Message: "message is required"}
	case utf8.RuneCountInString(message) > MaxMessageLength:
		return nil, &MessageError{Message: fmt.Sprintf("message exceeds %d characters", MaxMessageLength)}
	}

	history, err := a.store.History(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}

	answer, err := a.client.Chat(ctx, a.system, history, message, llm.TierStandard)
	if err != nil {
		return nil, err
	}
	answer = strings.TrimSpace(answer)

	if err := a.store.Append(ctx, sessionID,
		llm.Turn{Role: llm.RoleUser, Text: message},
		llm.Turn{Role: llm.RoleModel, Text: answer},
	); err != nil {
		return nil, fmt.Errorf("failed to save chat history: %w", err)
	}

	stored, err := a.store.History(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}

	a.logger.Debug("chat reply",
		zap.String("session", sessionID),
		zap.Int("history", len(history)),
		zap.Int("answer_chars", utf8.RuneCountInString(answer)))

	return &Reply{
		SessionID:  sessionID,
		Message:    answer,
		Turns:      len(stored),
		Compliance: a.scanner.Findings(answer),
	}, nil
}

// Reset clears a session's history.
func (a *Assistant) Reset(ctx context.Context, sessionID string) error {
	return a.store.Clear(ctx, sessionID)
}
