package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/contact-book/internal/model"
	"github.com/iliyamo/contact-book/internal/repository"
)

// ContactHandler serves the owner-scoped contact CRUD endpoints.  Every
// repository call below carries the identity the auth gate resolved; no
// handler ever trusts an owner value from the request.
type ContactHandler struct {
	Contacts *repository.ContactRepo
}

func NewContactHandler(contacts *repository.ContactRepo) *ContactHandler {
	if contacts == nil {
		panic("nil repository passed to NewContactHandler")
	}
	return &ContactHandler{Contacts: contacts}
}

const (
	defaultPage  = 1
	defaultLimit = 20
)

// List handles GET /api/contacts with pagination and an optional favorite
// filter.  The returned total counts every contact matching the owner and
// filter, independent of the requested page.
func (h *ContactHandler) List(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Not authorized"})
	}

	page := defaultPage
	if v := c.QueryParam("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid page"})
		}
		page = n
	}
	limit := defaultLimit
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid limit"})
		}
		limit = n
	}
	var favorite *bool
	if v := c.QueryParam("favorite"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid favorite"})
		}
		favorite = &b
	}

	contacts, total, err := h.Contacts.List(c.Request().Context(), u.ID, page, limit, favorite)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"contacts": contacts,
		"total":    total,
		"page":     page,
		"limit":    limit,
	})
}

// Get handles GET /api/contacts/:contactId.  Contacts owned by other users
// answer 404 exactly like missing ones.
func (h *ContactHandler) Get(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Not authorized"})
	}
	id, err := strconv.ParseUint(c.Param("contactId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	contact, err := h.Contacts.GetByIDAndOwner(c.Request().Context(), id, u.ID)
	if err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Contact not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "db error"})
	}
	return c.JSON(http.StatusOK, contact)
}

type contactReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Favorite bool   `json:"favorite"`
}

// Create handles POST /api/contacts.  The owner is always the requester,
// no matter what the body claims.
func (h *ContactHandler) Create(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Not authorized"})
	}
	var req contactReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	if msg := validateContactFields(req.Name, req.Email, req.Phone); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": msg})
	}

	contact := model.Contact{
		OwnerID:  u.ID,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Favorite: req.Favorite,
	}
	if err := h.Contacts.Create(c.Request().Context(), &contact); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not create contact"})
	}
	return c.JSON(http.StatusCreated, contact)
}

type contactUpdateReq struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Favorite *bool   `json:"favorite"`
}

// Update handles PUT /api/contacts/:contactId with full or partial field
// replacement.  Ownership can never change.
func (h *ContactHandler) Update(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Not authorized"})
	}
	id, err := strconv.ParseUint(c.Param("contactId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req contactUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}

	upd := repository.ContactUpdate{Favorite: req.Favorite}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "name must not be empty"})
		}
		upd.Name = &name
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if !validEmail(email) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid email"})
		}
		upd.Email = &email
	}
	if req.Phone != nil {
		phone := strings.TrimSpace(*req.Phone)
		if !validPhone(phone) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid phone"})
		}
		upd.Phone = &phone
	}
	if upd.Empty() {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "missing fields"})
	}

	contact, err := h.Contacts.Update(c.Request().Context(), id, u.ID, upd)
	if err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Contact not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "update failed"})
	}
	return c.JSON(http.StatusOK, contact)
}

// UpdateFavorite handles PATCH /api/contacts/:contactId/favorite.  An
// absent favorite key is a 400; explicitly sending false is valid.
func (h *ContactHandler) UpdateFavorite(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Not authorized"})
	}
	id, err := strconv.ParseUint(c.Param("contactId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req struct {
		Favorite *bool `json:"favorite"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if req.Favorite == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Missing field favorite"})
	}

	contact, err := h.Contacts.SetFavorite(c.Request().Context(), id, u.ID, *req.Favorite)
	if err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Contact not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "update failed"})
	}
	return c.JSON(http.StatusOK, contact)
}

// Delete handles DELETE /api/contacts/:contactId.
func (h *ContactHandler) Delete(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Not authorized"})
	}
	id, err := strconv.ParseUint(c.Param("contactId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := h.Contacts.Delete(c.Request().Context(), id, u.ID); err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Contact not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// validateContactFields checks the required create fields and returns a
// field-level message, or "" when everything is valid.
func validateContactFields(name, email, phone string) string {
	if name == "" {
		return "missing required field name"
	}
	if email == "" {
		return "missing required field email"
	}
	if !validEmail(email) {
		return "invalid email"
	}
	if phone == "" {
		return "missing required field phone"
	}
	if !validPhone(phone) {
		return "invalid phone"
	}
	return ""
}
