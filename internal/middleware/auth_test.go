package middleware

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/contact-book/internal/blacklist"
	"github.com/iliyamo/contact-book/internal/repository"
	"github.com/iliyamo/contact-book/internal/utils"

	_ "modernc.org/sqlite"
)

const testSecret = "gate-test-secret"

type gateEnv struct {
	users   *repository.UserRepo
	revoked *blacklist.MemoryStore
	gate    echo.MiddlewareFunc
	echo    *echo.Echo
}

func newGateEnv(t *testing.T) *gateEnv {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE users (
  id                 INTEGER PRIMARY KEY AUTOINCREMENT,
  email              TEXT NOT NULL UNIQUE,
  password_hash      TEXT NOT NULL,
  subscription       TEXT NOT NULL DEFAULT 'starter',
  session_token      TEXT,
  avatar_url         TEXT NOT NULL DEFAULT '',
  verified           INTEGER NOT NULL DEFAULT 0,
  verification_token TEXT
);`)
	require.NoError(t, err)

	users := repository.NewUserRepo(db)
	revoked := blacklist.NewMemoryStore()
	return &gateEnv{
		users:   users,
		revoked: revoked,
		gate:    Auth(testSecret, users, revoked),
		echo:    echo.New(),
	}
}

// loggedInUser creates a user and a session token persisted as its single
// active session, the way the login handler does.
func (env *gateEnv) loggedInUser(t *testing.T, email string) (uint64, string) {
	t.Helper()
	ctx := context.Background()
	id, err := env.users.Create(ctx, email, "hash", "", "v")
	require.NoError(t, err)
	tok, err := utils.NewSessionToken(testSecret, id)
	require.NoError(t, err)
	require.NoError(t, env.users.SetSessionToken(ctx, id, tok.Token))
	return id, tok.Token
}

// run sends one request through the gate into a probe handler and reports
// the response plus whether the probe observed a resolved identity.
func (env *gateEnv) run(t *testing.T, authHeader string) (*httptest.ResponseRecorder, uint64) {
	t.Helper()
	var resolvedID uint64
	probe := func(c echo.Context) error {
		u, ok := CurrentUser(c)
		require.True(t, ok, "gate let the request through without binding a user")
		tok, ok := CurrentToken(c)
		require.True(t, ok)
		require.NotEmpty(t, tok)
		resolvedID = u.ID
		return c.NoContent(http.StatusOK)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := env.echo.NewContext(req, rec)
	require.NoError(t, env.gate(probe)(c))
	return rec, resolvedID
}

func TestAuth_ValidToken(t *testing.T) {
	t.Parallel()
	env := newGateEnv(t)
	id, token := env.loggedInUser(t, "ok@example.com")

	rec, resolvedID := env.run(t, "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, id, resolvedID)
}

func TestAuth_MissingOrMalformedHeader(t *testing.T) {
	t.Parallel()
	env := newGateEnv(t)
	_, token := env.loggedInUser(t, "h@example.com")

	for _, header := range []string{
		"",
		"Bearer ",
		"Basic " + token,
		"Bearer not-a-jwt",
	} {
		rec, _ := env.run(t, header)
		require.Equal(t, http.StatusUnauthorized, rec.Code, "header=%q", header)
		// The body never reveals which check failed.
		require.Contains(t, rec.Body.String(), "Not authorized")
	}
}

func TestAuth_RevokedTokenRejected(t *testing.T) {
	t.Parallel()
	env := newGateEnv(t)
	_, token := env.loggedInUser(t, "r@example.com")

	// Sanity: accepted before revocation.
	rec, _ := env.run(t, "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, env.revoked.Revoke(context.Background(), token, time.Hour))

	rec, _ = env.run(t, "Bearer "+token)
	require.Equal(t, http.StatusUnauthorized, rec.Code,
		"a revoked token must be rejected even though it has not expired")
}

func TestAuth_TokenForDeletedUser(t *testing.T) {
	t.Parallel()
	env := newGateEnv(t)

	tok, err := utils.NewSessionToken(testSecret, 4242)
	require.NoError(t, err)
	rec, _ := env.run(t, "Bearer "+tok.Token)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_SupersededSessionRejected(t *testing.T) {
	t.Parallel()
	env := newGateEnv(t)
	id, oldToken := env.loggedInUser(t, "twice@example.com")

	// A later login replaces the stored session token.  Claims carry
	// second-precision timestamps, so wait long enough for the second
	// token to differ from the first.
	time.Sleep(1100 * time.Millisecond)
	newTok, err := utils.NewSessionToken(testSecret, id)
	require.NoError(t, err)
	require.NoError(t, env.users.SetSessionToken(context.Background(), id, newTok.Token))

	rec, _ := env.run(t, "Bearer "+oldToken)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, resolvedID := env.run(t, "Bearer "+newTok.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, id, resolvedID)
}

func TestAuth_LoggedOutUserRejected(t *testing.T) {
	t.Parallel()
	env := newGateEnv(t)
	id, token := env.loggedInUser(t, "out@example.com")

	require.NoError(t, env.users.ClearSessionToken(context.Background(), id))

	rec, _ := env.run(t, "Bearer "+token)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
