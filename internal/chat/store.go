// Package chat implements the content assistant: a brand-aware conversation
// whose history lives behind a SessionStore.
package chat

import (
	"context"
	"sync"
	"time"

	"github.com/thewell/content-studio/internal/llm"
)

// DefaultMaxTurns is how many turns a session keeps by default.
const DefaultMaxTurns = 20

// DefaultMaxSessions is how many sessions a MemoryStore holds before it
// forgets the least recently used one.
const DefaultMaxSessions = 1000

// SessionStore holds per-session conversation history.
type SessionStore interface {
	// History returns the turns of a session, oldest first.
	History(ctx context.Context, sessionID string) ([]llm.Turn, error)
	// Append adds turns to a session, evicting the oldest beyond the store's bound.
	Append(ctx context.Context, sessionID string, turns ...llm.Turn) error
	// Clear forgets a session.
	Clear(ctx context.Context, sessionID string) error
}

// MemoryStore is an in-process SessionStore. Each session is a bounded deque
// that always opens with a user turn, and the number of sessions is capped.
type MemoryStore struct {
	maxTurns    int
	maxSessions int
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	turns    []llm.Turn
	lastUsed time.Time
}

var _ SessionStore = (*MemoryStore)(nil)

// NewMemoryStore creates a store keeping at most maxTurns turns per session.
// A non-positive maxTurns uses DefaultMaxTurns.
func NewMemoryStore(maxTurns int) *MemoryStore {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &MemoryStore{
		maxTurns:    maxTurns,
		maxSessions: DefaultMaxSessions,
		now:         time.Now,
		sessions:    make(map[string]*session),
	}
}

// History implements SessionStore. The returned slice is a copy.
func (s *MemoryStore) History(_ context.Context, sessionID string) ([]llm.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return []llm.Turn{}, nil
	}
	sess.lastUsed = s.now()
	return append([]llm.Turn{}, sess.turns...), nil
}

// Append implements SessionStore. Eviction drops turns from the front until
// the history fits and starts with a user turn, so a user/model exchange is
// never split.
func (s *MemoryStore) Append(_ context.Context, sessionID string, turns ...llm.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		if len(s.sessions) >= s.maxSessions {
			s.evictOldest()
		}
		sess = &session{}
		s.sessions[sessionID] = sess
	}

	history := append(sess.turns, turns...)
	if over := len(history) - s.maxTurns; over > 0 {
		for over < len(history) && history[over].Role != llm.RoleUser {
			over++
		}
		history = append([]llm.Turn(nil), history[over:]...)
	}
	sess.turns = history
	sess.lastUsed = s.now()
	return nil
}

// evictOldest drops the least recently used session. Callers hold mu.
func (s *MemoryStore) evictOldest() {
	var (
		oldestID string
		oldest   time.Time
		found    bool
	)
	for id, sess := range s.sessions {
		if !found || sess.lastUsed.Before(oldest) {
			oldestID, oldest, found = id, sess.lastUsed, true
		}
	}
	if found {
		delete(s.sessions, oldestID)
	}
}

// Clear implements SessionStore.
func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// Sessions returns the number of live sessions.
func (s *MemoryStore) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
