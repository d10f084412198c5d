package handler_test

// End-to-end handler tests: requests travel through the real router and
// auth gate into handlers backed by an in-memory database, an in-memory
// blacklist and a recording event publisher.

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/contact-book/internal/avatar"
	"github.com/iliyamo/contact-book/internal/blacklist"
	"github.com/iliyamo/contact-book/internal/config"
	"github.com/iliyamo/contact-book/internal/handler"
	"github.com/iliyamo/contact-book/internal/middleware"
	"github.com/iliyamo/contact-book/internal/queue"
	"github.com/iliyamo/contact-book/internal/repository"
	"github.com/iliyamo/contact-book/internal/router"

	_ "modernc.org/sqlite"
)

// eventRecorder captures published verification events instead of talking
// to a broker.
type eventRecorder struct {
	mu     sync.Mutex
	events []queue.VerificationEmailEvent
	fail   bool
}

func (r *eventRecorder) publish(_ context.Context, ev queue.VerificationEmailEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return fmt.Errorf("broker unavailable")
	}
	r.events = append(r.events, ev)
	return nil
}

func (r *eventRecorder) last(t *testing.T) queue.VerificationEmailEvent {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.events, "no verification event was published")
	return r.events[len(r.events)-1]
}

type testServer struct {
	echo    *echo.Echo
	users   *repository.UserRepo
	revoked *blacklist.MemoryStore
	events  *eventRecorder
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	for _, stmt := range []string{`
CREATE TABLE users (
  id                 INTEGER PRIMARY KEY AUTOINCREMENT,
  email              TEXT NOT NULL UNIQUE,
  password_hash      TEXT NOT NULL,
  subscription       TEXT NOT NULL DEFAULT 'starter',
  session_token      TEXT,
  avatar_url         TEXT NOT NULL DEFAULT '',
  verified           INTEGER NOT NULL DEFAULT 0,
  verification_token TEXT
)`, `
CREATE TABLE contacts (
  id       INTEGER PRIMARY KEY AUTOINCREMENT,
  owner_id INTEGER NOT NULL,
  name     TEXT NOT NULL,
  email    TEXT NOT NULL,
  phone    TEXT NOT NULL,
  favorite INTEGER NOT NULL DEFAULT 0
)`} {
		_, err = db.Exec(stmt)
		require.NoError(t, err)
	}

	cfg := config.Config{
		Env:        "test",
		JWTSecret:  "handler-test-secret",
		BcryptCost: 4, // fast hashing in tests
	}
	users := repository.NewUserRepo(db)
	contacts := repository.NewContactRepo(db)
	revoked := blacklist.NewMemoryStore()
	events := &eventRecorder{}

	avatars, err := avatar.NewStorage(t.TempDir(), "/avatars")
	require.NoError(t, err)

	e := echo.New()
	gate := middleware.Auth(cfg.JWTSecret, users, revoked)
	router.RegisterRoutes(e)
	router.RegisterUsers(e, handler.NewAuthHandler(cfg, users, revoked, events.publish),
		handler.NewUserHandler(cfg, users, avatars, events.publish), gate)
	router.RegisterContacts(e, handler.NewContactHandler(contacts), gate)

	return &testServer{echo: e, users: users, revoked: revoked, events: events}
}

// do issues a JSON request against the server.  An empty token leaves the
// Authorization header unset.
func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) signup(t *testing.T, email, password string) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/users/signup", "",
		map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/users/login", "",
		map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), into))
}
