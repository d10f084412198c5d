package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/contact-book/internal/model"
)

// UserRepo is the credential store.  All session-token and verification
// mutations are single conditional statements so concurrent requests never
// need read-then-write cycles.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `id, email, password_hash, subscription,
	COALESCE(session_token,''), avatar_url, verified, COALESCE(verification_token,'')`

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Subscription,
		&u.SessionToken, &u.AvatarURL, &u.Verified, &u.VerificationToken)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrUserNotFound
	}
	return u, err
}

// Create inserts a new user and returns its ID.  The password must already
// be hashed by the caller; this layer never sees plaintext credentials.
func (r *UserRepo) Create(ctx context.Context, email, passwordHash, avatarURL, verificationToken string) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, subscription, avatar_url, verification_token) VALUES (?,?,?,?,?)",
		email, passwordHash, model.SubscriptionStarter, avatarURL, verificationToken)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// SetSessionToken stores the user's current session token, replacing any
// previous one so at most one session is active per user.
func (r *UserRepo) SetSessionToken(ctx context.Context, id uint64, token string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET session_token=? WHERE id=?", token, id)
	return err
}

// ClearSessionToken nulls the stored session token on logout.
func (r *UserRepo) ClearSessionToken(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET session_token=NULL WHERE id=?", id)
	return err
}

// UpdateSubscription switches the user's tier.  Tier validation happens in
// the handler; this layer just persists the value.
func (r *UserRepo) UpdateSubscription(ctx context.Context, id uint64, tier string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET subscription=? WHERE id=?", tier, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Tier may equal the current value; confirm the row exists before
		// reporting not found.
		var exists uint64
		if err := r.DB.QueryRowContext(ctx,
			"SELECT id FROM users WHERE id=? LIMIT 1", id).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrUserNotFound
			}
			return err
		}
	}
	return nil
}

// UpdateAvatar stores the URL of a freshly uploaded avatar.
func (r *UserRepo) UpdateAvatar(ctx context.Context, id uint64, url string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET avatar_url=? WHERE id=?", url, id)
	return err
}

// VerifyByToken marks the owner of a verification token as verified and
// clears the token in one conditional update.  ErrUserNotFound means the
// token is unknown or was already consumed.
func (r *UserRepo) VerifyByToken(ctx context.Context, token string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET verified=?, verification_token=NULL WHERE verification_token=?",
		true, token)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}
