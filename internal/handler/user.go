package handler

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/contact-book/internal/avatar"
	"github.com/iliyamo/contact-book/internal/config"
	"github.com/iliyamo/contact-book/internal/queue"
	"github.com/iliyamo/contact-book/internal/repository"
)

// maxAvatarBytes bounds how much of an upload is read into memory.
const maxAvatarBytes = 5 << 20

// UserHandler serves the profile endpoints layered on the credential
// store: subscription changes, avatar uploads and email verification.
type UserHandler struct {
	Cfg     config.Config
	Users   *repository.UserRepo
	Avatars *avatar.Storage
	Publish func(ctx context.Context, ev queue.VerificationEmailEvent) error
}

func NewUserHandler(cfg config.Config, u *repository.UserRepo, store *avatar.Storage,
	publish func(ctx context.Context, ev queue.VerificationEmailEvent) error) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: u, Avatars: store, Publish: publish}
}

// UpdateSubscription handles PATCH /api/users and switches the tier.
func (h *UserHandler) UpdateSubscription(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Not authorized"})
	}
	var body struct {
		Subscription string `json:"subscription"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if !validSubscription(body.Subscription) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid subscription"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.UpdateSubscription(ctx, u.ID, body.Subscription); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Not authorized"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"email":        u.Email,
		"subscription": body.Subscription,
	})
}

// UpdateAvatar handles PATCH /api/users/avatars.  The uploaded file is
// decoded, resized to the 250×250 canvas, stored under a generated name and
// its URL persisted on the user record.
func (h *UserHandler) UpdateAvatar(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Not authorized"})
	}
	fh, err := c.FormFile("avatar")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "No file uploaded"})
	}
	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "upload failed"})
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxAvatarBytes))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "upload failed"})
	}

	img, err := avatar.Process(data)
	if err != nil {
		if errors.Is(err, avatar.ErrDecode) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "unsupported image"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "image processing failed"})
	}

	url, err := h.Avatars.Save(u.ID, img)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "store avatar failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Users.UpdateAvatar(ctx, u.ID, url); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "store avatar failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"avatarURL": url})
}

// Verify handles GET /api/users/verify/:verificationToken and consumes a
// verification token.
func (h *UserHandler) Verify(c echo.Context) error {
	token := c.Param("verificationToken")
	if token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "missing verification token"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.VerifyByToken(ctx, token); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "verification failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Verification successful"})
}

// ResendVerification handles POST /api/users/verify and queues another
// verification email for a not-yet-verified account.
func (h *UserHandler) ResendVerification(c echo.Context) error {
	var body struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	body.Email = normalizeEmail(body.Email)
	if body.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "missing required field email"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, body.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	if u.Verified {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Verification has already been passed"})
	}

	if h.Publish != nil {
		ev := queue.VerificationEmailEvent{
			Email:             u.Email,
			VerificationToken: u.VerificationToken,
			RequestedAt:       time.Now().UTC().Format(time.RFC3339),
		}
		if err := h.Publish(ctx, ev); err != nil {
			log.Printf("resend: queue verification email for %s failed: %v", u.Email, err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "send failed"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Verification email sent"})
}
