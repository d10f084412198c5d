// Package queue defines message payloads exchanged over the message broker.
package queue

// VerificationEmailEvent is published when a user signs up or requests a
// fresh verification email.  It carries everything the mail consumer needs
// to build and send the verification link without querying the database.
type VerificationEmailEvent struct {
	Email             string `json:"email"`
	VerificationToken string `json:"verification_token"`
	RequestedAt       string `json:"requested_at"`
}
