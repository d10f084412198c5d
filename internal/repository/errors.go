// Package repository contains data access logic separated from HTTP handlers.
// This file defines sentinel errors shared across repositories.  Handlers
// match on these values to pick status codes without inspecting driver
// errors themselves.
package repository

import (
	"errors"
	"strings"
)

// ErrEmailExists is returned when an insert violates the unique email
// constraint.  Handlers translate it into an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")

// ErrUserNotFound is returned when no user row matches a lookup.
var ErrUserNotFound = errors.New("user not found")

// ErrContactNotFound is returned when a contact does not exist or is owned
// by a different user.  The two cases are deliberately indistinguishable so
// the API never leaks whether a foreign contact id exists.
var ErrContactNotFound = errors.New("contact not found")

// isDuplicateKey reports whether err is a unique-constraint violation.
// MySQL reports error 1062; SQLite (used by the test harness) mentions
// the unique constraint in the message.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "1062") || strings.Contains(msg, "unique")
}
