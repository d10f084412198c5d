package model

// User represents an application user record as stored in the `users`
// table.  The password hash is kept internal and never serialized;
// handlers define separate response types with the fields they expose.
//
// SessionToken holds the single currently-valid bearer token for the
// user.  It is overwritten on every login and cleared on logout, so at
// most one session is active per user at any time.  An empty string
// means the user is logged out (the column is NULL in the database).
//
// VerificationToken is issued at signup and cleared once the user
// follows the verification link, at which point Verified flips to true.
type User struct {
	ID                uint64 // users.id
	Email             string // users.email (unique, login key)
	PasswordHash      string // users.password_hash (bcrypt)
	Subscription      string // users.subscription (starter|pro|business)
	SessionToken      string // users.session_token ("" when logged out)
	AvatarURL         string // users.avatar_url
	Verified          bool   // users.verified
	VerificationToken string // users.verification_token ("" once verified)
}

// Subscription tiers accepted by the subscription update endpoint.
const (
	SubscriptionStarter  = "starter"
	SubscriptionPro      = "pro"
	SubscriptionBusiness = "business"
)

// ValidSubscription reports whether tier is one of the three known tiers.
func ValidSubscription(tier string) bool {
	switch tier {
	case SubscriptionStarter, SubscriptionPro, SubscriptionBusiness:
		return true
	}
	return false
}
