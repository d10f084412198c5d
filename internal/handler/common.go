package handler // handler defines http handlers

import (
    "net/mail" // net/mail parses RFC 5322 addresses for email validation
    "strings"  // strings provides trimming helpers

    "github.com/labstack/echo/v4" // echo defines request context types

    "github.com/iliyamo/contact-book/internal/middleware"
    "github.com/iliyamo/contact-book/internal/model"
)

// currentUser returns the identity the auth gate bound to this request.
// The gate guarantees it is present on protected routes; the boolean guards
// against a handler accidentally registered outside the gate.
func currentUser(c echo.Context) (model.User, bool) {
    return middleware.CurrentUser(c)
}

// middlewareToken returns the raw bearer token the auth gate accepted.
func middlewareToken(c echo.Context) (string, bool) {
    return middleware.CurrentToken(c)
}

// validEmail reports whether s parses as a single RFC 5322 address.
func validEmail(s string) bool {
    a, err := mail.ParseAddress(s)
    return err == nil && a.Address == s
}

// validPhone accepts digits with the usual separators: spaces, dashes,
// dots, parentheses and a leading plus.  At least three digits required.
func validPhone(s string) bool {
    digits := 0
    for i, r := range s {
        switch {
        case r >= '0' && r <= '9':
            digits++
        case r == '+' && i == 0:
        case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
        default:
            return false
        }
    }
    return digits >= 3
}

// validSubscription reports whether tier names a known subscription tier.
func validSubscription(tier string) bool {
    return model.ValidSubscription(tier)
}

// normalizeEmail lowers and trims an email address before lookups and
// storage so the unique constraint is case-insensitive in practice.
func normalizeEmail(s string) string {
    return strings.ToLower(strings.TrimSpace(s))
}
