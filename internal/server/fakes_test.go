package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/thewell/content-studio/internal/config"
	"github.com/thewell/content-studio/internal/db"
	"github.com/thewell/content-studio/internal/llm"
	"github.com/thewell/content-studio/internal/printing"
	"github.com/thewell/content-studio/internal/server/ratelimit"
	"github.com/thewell/content-studio/internal/types"
)

var errStoreDown = errors.New("connection refused")

// memStore is an in-memory Store.
type memStore struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*db.User
	codes    []*db.LoginCode
	sections map[uuid.UUID]types.ContentRecord
	docs     map[uuid.UUID]db.Document
	runs     map[uuid.UUID]db.ResearchRun
	seq      int
	err      error
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[uuid.UUID]*db.User),
		sections: make(map[uuid.UUID]types.ContentRecord),
		docs:     make(map[uuid.UUID]db.Document),
		runs:     make(map[uuid.UUID]db.ResearchRun),
	}
}

// tick returns strictly increasing timestamps so ordering is stable.
func (m *memStore) tick() time.Time {
	m.seq++
	return time.Date(2025, 1, 1, 0, 0, m.seq, 0, time.UTC)
}

func (m *memStore) Ping(context.Context) error { return m.err }

func (m *memStore) GetUser(_ context.Context, id uuid.UUID) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (m *memStore) FindOrCreateUser(_ context.Context, email string) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	now := m.tick()
	u := &db.User{ID: uuid.New(), Email: email, CreatedAt: now, UpdatedAt: now}
	m.users[u.ID] = u
	copied := *u
	return &copied, nil
}

func (m *memStore) UpdateUserName(_ context.Context, id uuid.UUID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return errors.New("user not found")
	}
	u.Name = name
	u.UpdatedAt = m.tick()
	return nil
}

func (m *memStore) DeleteUser(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	for sid, s := range m.sections {
		if s.UserID == id {
			delete(m.sections, sid)
		}
	}
	return nil
}

func (m *memStore) CreateLoginCode(_ context.Context, email, codeHash string, expiresAt time.Time) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return uuid.Nil, m.err
	}
	c := &db.LoginCode{ID: uuid.New(), Email: email, CodeHash: codeHash, ExpiresAt: expiresAt, CreatedAt: m.tick()}
	m.codes = append(m.codes, c)
	return c.ID, nil
}

func (m *memStore) GetActiveLoginCode(_ context.Context, email string, now time.Time) (*db.LoginCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.codes) - 1; i >= 0; i-- {
		c := m.codes[i]
		if c.Email == email && c.ConsumedAt == nil && now.Before(c.ExpiresAt) {
			copied := *c
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memStore) IncrementLoginCodeAttempts(_ context.Context, id uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.codes {
		if c.ID == id {
			c.Attempts++
			return c.Attempts, nil
		}
	}
	return 0, errors.New("login code not found")
}

func (m *memStore) ConsumeLoginCode(_ context.Context, id uuid.UUID, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.codes {
		if c.ID == id && c.ConsumedAt == nil {
			c.ConsumedAt = &now
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) CreateSection(_ context.Context, r *types.ContentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	r.ID = uuid.New()
	r.CreatedAt = m.tick()
	r.UpdatedAt = r.CreatedAt
	m.sections[r.ID] = *r
	return nil
}

func (m *memStore) GetSection(_ context.Context, userID, id uuid.UUID) (*types.ContentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	r, ok := m.sections[id]
	if !ok || r.UserID != userID {
		return nil, nil
	}
	return &r, nil
}

func (m *memStore) sorted(keep func(types.ContentRecord) bool) []types.ContentRecord {
	out := []types.ContentRecord{}
	for _, r := range m.sections {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (m *memStore) ListSections(_ context.Context, userID uuid.UUID) ([]types.ContentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.sorted(func(r types.ContentRecord) bool { return r.UserID == userID }), nil
}

func (m *memStore) ListSectionsByIDs(_ context.Context, userID uuid.UUID, ids []uuid.UUID) ([]types.ContentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return m.sorted(func(r types.ContentRecord) bool { return r.UserID == userID && want[r.ID] }), nil
}

func (m *memStore) UpdateSection(_ context.Context, r *types.ContentRecord) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.sections[r.ID]
	if !ok || existing.UserID != r.UserID {
		return false, nil
	}
	r.CreatedAt = existing.CreatedAt
	r.UpdatedAt = m.tick()
	m.sections[r.ID] = *r
	return true, nil
}

func (m *memStore) DeleteSection(_ context.Context, userID, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.sections[id]
	if !ok || r.UserID != userID {
		return false, nil
	}
	delete(m.sections, id)
	return true, nil
}

func (m *memStore) SaveDocument(_ context.Context, d *db.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	d.ID = uuid.New()
	d.CreatedAt = m.tick()
	d.SizeBytes = len(d.Data)
	m.docs[d.ID] = *d
	return nil
}

func (m *memStore) GetDocument(_ context.Context, userID, id uuid.UUID) (*db.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok || d.UserID != userID {
		return nil, nil
	}
	return &d, nil
}

func (m *memStore) ListDocuments(_ context.Context, userID uuid.UUID, limit int) ([]db.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []db.Document{}
	for _, d := range m.docs {
		if d.UserID == userID {
			d.Data = nil
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) SaveResearchRun(_ context.Context, run *db.ResearchRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	run.ID = uuid.New()
	run.CreatedAt = m.tick()
	m.runs[run.ID] = *run
	return nil
}

func (m *memStore) GetResearchRun(_ context.Context, id uuid.UUID) (*db.ResearchRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return nil, nil
	}
	return &run, nil
}

func (m *memStore) ListResearchRuns(_ context.Context, userID uuid.UUID, _ int) ([]db.ResearchRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []db.ResearchRun{}
	for _, run := range m.runs {
		if run.UserID != nil && *run.UserID == userID {
			out = append(out, run)
		}
	}
	return out, nil
}

// captureMailer records every code it is asked to send.
type captureMailer struct {
	mu    sync.Mutex
	codes map[string]string
	err   error
}

func (c *captureMailer) SendLoginCode(_ context.Context, email, code string, _ time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	if c.codes == nil {
		c.codes = make(map[string]string)
	}
	c.codes[email] = code
	return nil
}

func (c *captureMailer) code(email string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.codes[email]
}

// testClock is a settable clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	server *Server
	store  *memStore
	mailer *captureMailer
	clock  *testClock
	llm    *llm.FakeClient
}

type envOption func(*Deps)

func withLLM(client llm.Client) envOption {
	return func(d *Deps) { d.LLM = client }
}

func withRateLimitConfig(cfg *ratelimit.Config) envOption {
	return func(d *Deps) { d.RateLimit = cfg }
}

func withPrinter(p *fakePrinter) envOption {
	return func(d *Deps) { d.Printer = p }
}

// fakePrinter returns a blank PDF with a fixed page count.
type fakePrinter struct {
	mu    sync.Mutex
	pages int
	html  string
	err   error
}

func (f *fakePrinter) PrintPDF(_ context.Context, html string, _ printing.PaperSize) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.html = html
	if f.err != nil {
		return nil, f.err
	}
	return blankPDF(f.pages), nil
}

// blankPDF builds a valid PDF with n empty letter pages.
func blankPDF(n int) []byte {
	var buf bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	kids := make([]string, n)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R", i+3)
	}
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n))
	for i := 0; i < n; i++ {
		obj("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> >>")
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	env := &testEnv{
		store:  newMemStore(),
		mailer: &captureMailer{},
		clock:  &testClock{now: time.Now()},
	}
	deps := Deps{
		Store:      env.store,
		JWT:        &config.JWTConfig{Secret: testJWTSecret, ExpirationHours: 24},
		LoginCodes: &config.LoginCodeConfig{BcryptCost: 4, TTL: 10 * time.Minute, MaxAttempts: 3},
		Mailer:     env.mailer,
		RateLimit:  &ratelimit.Config{Enabled: false},
		Now:        env.clock.Now,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	if fake, ok := deps.LLM.(*llm.FakeClient); ok {
		env.llm = fake
	}

	s, err := New(Config{Port: 0}, deps)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	env.server = s
	return env
}

// do sends a JSON request through the full middleware chain.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)
	return w
}

// login signs email in through the code flow and returns the session token.
func (e *testEnv) login(t *testing.T, email string) (string, *types.User) {
	t.Helper()
	w := e.do(t, http.MethodPost, "/v1/auth/request-code", "", map[string]string{"email": email})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	code := e.mailer.code(strings.ToLower(email))
	require.Len(t, code, 6)

	w = e.do(t, http.MethodPost, "/v1/auth/verify-code", "", map[string]string{"email": email, "code": code})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp types.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token, resp.User
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
