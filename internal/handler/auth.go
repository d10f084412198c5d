package handler

import (
	"context"  // provides context with cancellation for DB calls
	"errors"   // sentinel error matching
	"log"      // best-effort failures are logged, not surfaced
	"net/http" // HTTP status codes and primitives
	"time"     // timeouts for DB calls

	"github.com/google/uuid"      // verification token generation
	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/iliyamo/contact-book/internal/blacklist"
	"github.com/iliyamo/contact-book/internal/config"
	"github.com/iliyamo/contact-book/internal/queue"
	"github.com/iliyamo/contact-book/internal/repository"
	"github.com/iliyamo/contact-book/internal/utils"
)

// AuthHandler bundles dependencies for the session-lifecycle endpoints.
// Publish is the hook used to hand verification events to the broker; tests
// replace it with a recorder.
type AuthHandler struct {
	Cfg     config.Config
	Users   *repository.UserRepo
	Revoked blacklist.Store
	Publish func(ctx context.Context, ev queue.VerificationEmailEvent) error
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, revoked blacklist.Store,
	publish func(ctx context.Context, ev queue.VerificationEmailEvent) error) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Revoked: revoked, Publish: publish}
}

// ----- DTOs -----

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPart struct {
	Email        string `json:"email"`
	Subscription string `json:"subscription"`
	AvatarURL    string `json:"avatarURL,omitempty"`
}

// Signup: create user with hashed password, default tier and identicon
// avatar, then queue the verification email.  The password hash is never
// part of any response.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	req.Email = normalizeEmail(req.Email)
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "email and password are required"})
	}
	if !validEmail(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid email"})
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "create user failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	verificationToken := uuid.NewString()
	if _, err := h.Users.Create(ctx, req.Email, hash, utils.GravatarURL(req.Email), verificationToken); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"message": "Email is already in use"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "create user failed"})
	}

	// Delivery is best effort: a lost event is recoverable via the resend
	// endpoint, so signup never fails on broker trouble.
	if h.Publish != nil {
		ev := queue.VerificationEmailEvent{
			Email:             req.Email,
			VerificationToken: verificationToken,
			RequestedAt:       time.Now().UTC().Format(time.RFC3339),
		}
		if err := h.Publish(ctx, ev); err != nil {
			log.Printf("signup: queue verification email for %s failed: %v", req.Email, err)
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"user": userPart{
			Email:        req.Email,
			Subscription: "starter",
			AvatarURL:    utils.GravatarURL(req.Email),
		},
	})
}

// Login: verify credentials, issue a fresh 12h session token and persist it
// as the user's single active session.  Unknown email and wrong password
// produce the identical response so accounts cannot be enumerated.
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	req.Email = normalizeEmail(req.Email)
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "email and password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Incorrect email or password"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Incorrect email or password"})
	}

	session, err := utils.NewSessionToken(h.Cfg.JWTSecret, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "issue token failed"})
	}
	if err := h.Users.SetSessionToken(ctx, u.ID, session.Token); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "save session failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"token": session.Token,
		"user":  userPart{Email: u.Email, Subscription: u.Subscription},
	})
}

// Logout: blacklist the presented token, then clear the stored session.
// The blacklist write comes first on purpose: if clearing the session row
// fails afterwards the token is still dead, failing closed instead of open.
func (h *AuthHandler) Logout(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Not authorized"})
	}
	token, _ := middlewareToken(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	_, exp, err := utils.ParseSessionToken(h.Cfg.JWTSecret, token)
	if err != nil {
		// The gate verified this token moments ago; a parse failure here
		// means something is badly wrong.
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "logout failed"})
	}
	if err := h.Revoked.Revoke(ctx, token, time.Until(exp)); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "logout failed"})
	}
	if err := h.Users.ClearSessionToken(ctx, u.ID); err != nil {
		// Token is already revoked; the stale row only blocks this user
		// until the next login.
		log.Printf("logout: clear session for user %d failed: %v", u.ID, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Current returns the authenticated user's own profile.
func (h *AuthHandler) Current(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Not authorized"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"email":        u.Email,
		"subscription": u.Subscription,
		"avatarURL":    u.AvatarURL,
		"verified":     u.Verified,
	})
}
