package utils

import (
	"crypto/md5"
	"fmt"
	"strings"
)

// GravatarURL returns the deterministic identicon URL for an email address.
// New users get this as their avatar until they upload their own image.
// Gravatar expects the MD5 of the trimmed, lowercased address.
func GravatarURL(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	sum := md5.Sum([]byte(normalized))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?d=identicon", sum)
}
