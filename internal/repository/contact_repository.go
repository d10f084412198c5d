package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/contact-book/internal/model"
)

// ContactRepo encapsulates all database queries related to contacts.  Every
// statement carries the owner id next to the contact id, so a contact is
// unreachable for anyone but its owner and no read-then-write races exist:
// each mutation is one conditional statement.
type ContactRepo struct{ DB *sql.DB }

func NewContactRepo(db *sql.DB) *ContactRepo { return &ContactRepo{DB: db} }

// ContactUpdate carries an optional new value per mutable column.  Nil
// pointers leave the column untouched.  The owner is not represented here
// on purpose; ownership never changes.
type ContactUpdate struct {
	Name     *string
	Email    *string
	Phone    *string
	Favorite *bool
}

// Empty reports whether the update would touch no columns.
func (u ContactUpdate) Empty() bool {
	return u.Name == nil && u.Email == nil && u.Phone == nil && u.Favorite == nil
}

// List returns one page of the owner's contacts, optionally filtered by
// favorite, plus the total count matching the same filter regardless of
// page.  Results are ordered by id, i.e. insertion order.
func (r *ContactRepo) List(ctx context.Context, ownerID uint64, page, limit int, favorite *bool) ([]model.Contact, int64, error) {
	cond := "owner_id = ?"
	args := []any{ownerID}
	if favorite != nil {
		cond += " AND favorite = ?"
		args = append(args, *favorite)
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM contacts WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	dataSQL := `SELECT id, owner_id, name, email, phone, favorite
		FROM contacts WHERE ` + cond + `
		ORDER BY id
		LIMIT ? OFFSET ?`
	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.DB.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Contact, 0, limit)
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Email, &c.Phone, &c.Favorite); err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// GetByIDAndOwner fetches a contact by id but only if it belongs to the
// given owner.  Missing rows and foreign rows both yield ErrContactNotFound.
func (r *ContactRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (model.Contact, error) {
	var c model.Contact
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, owner_id, name, email, phone, favorite FROM contacts WHERE id = ? AND owner_id = ? LIMIT 1",
		id, ownerID).Scan(&c.ID, &c.OwnerID, &c.Name, &c.Email, &c.Phone, &c.Favorite)
	if errors.Is(err, sql.ErrNoRows) {
		return c, ErrContactNotFound
	}
	return c, err
}

// Create inserts a new contact.  The OwnerID on the passed model is the
// resolved identity of the requester; callers must never copy it from a
// request body.  On success the ID field is populated.
func (r *ContactRepo) Create(ctx context.Context, c *model.Contact) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO contacts (owner_id, name, email, phone, favorite) VALUES (?,?,?,?,?)",
		c.OwnerID, c.Name, c.Email, c.Phone, c.Favorite)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// Update applies a partial update to an owned contact and returns the
// resulting row.  The SET list is built from the fields actually supplied;
// the owner column is never part of it.
func (r *ContactRepo) Update(ctx context.Context, id, ownerID uint64, upd ContactUpdate) (model.Contact, error) {
	sets := []string{}
	args := []any{}
	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *upd.Email)
	}
	if upd.Phone != nil {
		sets = append(sets, "phone = ?")
		args = append(args, *upd.Phone)
	}
	if upd.Favorite != nil {
		sets = append(sets, "favorite = ?")
		args = append(args, *upd.Favorite)
	}
	if len(sets) == 0 {
		return r.GetByIDAndOwner(ctx, id, ownerID)
	}
	args = append(args, id, ownerID)

	// An unchanged value can legitimately affect zero rows, so existence is
	// decided by the follow-up read rather than RowsAffected.
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE contacts SET "+strings.Join(sets, ", ")+" WHERE id = ? AND owner_id = ?",
		args...); err != nil {
		return model.Contact{}, err
	}
	return r.GetByIDAndOwner(ctx, id, ownerID)
}

// SetFavorite flips the favorite flag on an owned contact and returns the
// updated row.
func (r *ContactRepo) SetFavorite(ctx context.Context, id, ownerID uint64, favorite bool) (model.Contact, error) {
	return r.Update(ctx, id, ownerID, ContactUpdate{Favorite: &favorite})
}

// Delete removes an owned contact.  ErrContactNotFound covers both a
// missing row and a row owned by someone else.
func (r *ContactRepo) Delete(ctx context.Context, id, ownerID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM contacts WHERE id = ? AND owner_id = ?", id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrContactNotFound
	}
	return nil
}
