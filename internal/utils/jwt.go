package utils // package utils provides helper functions for token creation and hashing

import (
    "crypto/sha256" // SHA‑256 digests for blacklist keys
    "encoding/hex"  // hex encoding of digests
    "errors"        // sentinel error for invalid tokens
    "time"          // expiry arithmetic

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// SessionTTL is the fixed validity window of a session token.  Every token
// expires exactly twelve hours after issuance; there is no refresh flow.
const SessionTTL = 12 * time.Hour

// ErrInvalidToken is returned by ParseSessionToken for any token that fails
// verification: bad signature, wrong algorithm, malformed payload or an
// expiry that has already passed.  Callers never learn which check failed.
var ErrInvalidToken = errors.New("invalid session token")

// SessionClaims is the payload of a session token.  The user id lives in a
// dedicated numeric field rather than the registered Subject claim so it
// stays typed instead of round-tripping through strings.
type SessionClaims struct {
    UserID uint64 `json:"uid"`
    jwt.RegisteredClaims
}

// SessionToken represents a signed JWT session token along with its expiry.
type SessionToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// NewSessionToken builds and signs an HS256 JWT binding to the given user.
// The token carries iat and exp claims; exp is always iat + SessionTTL.
func NewSessionToken(secret string, userID uint64) (SessionToken, error) {
    now := time.Now().UTC()
    exp := now.Add(SessionTTL)
    claims := &SessionClaims{
        UserID: userID,
        RegisteredClaims: jwt.RegisteredClaims{
            ExpiresAt: jwt.NewNumericDate(exp),
            IssuedAt:  jwt.NewNumericDate(now),
        },
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return SessionToken{}, err
    }
    return SessionToken{Token: signed, Exp: exp}, nil
}

// ParseSessionToken verifies signature and expiry of a session token and
// returns the bound user id plus the token's expiry time.  Any failure is
// reported as ErrInvalidToken.  Revocation is not checked here; that is the
// blacklist's job.
func ParseSessionToken(secret, raw string) (uint64, time.Time, error) {
    tok, err := jwt.ParseWithClaims(raw, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
        // Reject tokens signed with anything but HMAC; jwt.Parse would
        // otherwise accept an attacker-chosen algorithm.
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return 0, time.Time{}, ErrInvalidToken
    }
    claims, ok := tok.Claims.(*SessionClaims)
    if !ok || claims.UserID == 0 || claims.ExpiresAt == nil {
        return 0, time.Time{}, ErrInvalidToken
    }
    return claims.UserID, claims.ExpiresAt.Time, nil
}

// HashToken returns the SHA‑256 hash of a raw token as a hex string.
// Blacklist entries are keyed by this digest so the store never holds a
// usable credential.
func HashToken(raw string) string {
    sum := sha256.Sum256([]byte(raw))
    return hex.EncodeToString(sum[:])
}
