package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "log"      // internal rejection reasons are only ever logged
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/iliyamo/contact-book/internal/blacklist"
    "github.com/iliyamo/contact-book/internal/model"
    "github.com/iliyamo/contact-book/internal/repository"
    "github.com/iliyamo/contact-book/internal/utils"
)

// Context keys under which the auth gate stores the resolved identity and
// the raw token it arrived with.  Handlers read them via CurrentUser and
// CurrentToken instead of touching the keys directly.
const (
    userContextKey  = "user"
    tokenContextKey = "session_token"
)

// Auth returns the Echo middleware that guards every protected route.  For
// each request it runs, in order: bearer extraction, revocation check,
// signature/expiry verification, user load, and a comparison against the
// session token stored on the user row (a user that logged out or logged in
// elsewhere invalidates every earlier token).  Any failure yields the same
// 401 body; the concrete reason is logged but never surfaced, so callers
// cannot probe which check rejected them.  The gate is read-only.
func Auth(secret string, users *repository.UserRepo, revoked blacklist.Store) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            authHeader := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(authHeader, "Bearer ") {
                return reject(c, "missing bearer token")
            }
            raw := strings.TrimPrefix(authHeader, "Bearer ")

            ctx := c.Request().Context()

            // Revocation is checked before the signature so a logged-out
            // token never reaches the verifier.  A blacklist read failure
            // rejects as well: fail closed rather than open.
            isRevoked, err := revoked.IsRevoked(ctx, raw)
            if err != nil {
                return reject(c, "blacklist lookup failed: "+err.Error())
            }
            if isRevoked {
                return reject(c, "token revoked")
            }

            userID, _, err := utils.ParseSessionToken(secret, raw)
            if err != nil {
                return reject(c, "token verification failed")
            }

            u, err := users.GetByID(ctx, userID)
            if err != nil {
                // Covers stale tokens for users that no longer exist as
                // well as store failures.
                return reject(c, "user load failed: "+err.Error())
            }
            if u.SessionToken == "" || u.SessionToken != raw {
                return reject(c, "token does not match current session")
            }

            c.Set(userContextKey, u)
            c.Set(tokenContextKey, raw)
            return next(c)
        }
    }
}

// reject logs the internal reason and answers with the uniform 401 body.
func reject(c echo.Context, reason string) error {
    log.Printf("auth: %s %s rejected: %s", c.Request().Method, c.Path(), reason)
    return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Not authorized"})
}

// CurrentUser returns the identity resolved by Auth for this request.
// The boolean is false on routes that are not behind the gate.
func CurrentUser(c echo.Context) (model.User, bool) {
    u, ok := c.Get(userContextKey).(model.User)
    return u, ok
}

// CurrentToken returns the raw bearer token the request arrived with.
func CurrentToken(c echo.Context) (string, bool) {
    t, ok := c.Get(tokenContextKey).(string)
    return t, ok
}
