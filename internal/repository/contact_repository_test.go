package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/contact-book/internal/model"
)

func seedContact(t *testing.T, r *ContactRepo, owner uint64, name string, favorite bool) model.Contact {
	t.Helper()
	c := model.Contact{
		OwnerID:  owner,
		Name:     name,
		Email:    name + "@example.com",
		Phone:    "123456",
		Favorite: favorite,
	}
	require.NoError(t, r.Create(context.Background(), &c))
	require.NotZero(t, c.ID)
	return c
}

func TestContactRepo_OwnershipIsolation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := NewContactRepo(setupDB(t))

	mine := seedContact(t, r, 1, "ann", false)

	// The owner sees the contact; anyone else gets not-found, never a
	// different error that would leak existence.
	got, err := r.GetByIDAndOwner(ctx, mine.ID, 1)
	require.NoError(t, err)
	require.Equal(t, mine, got)

	_, err = r.GetByIDAndOwner(ctx, mine.ID, 2)
	require.ErrorIs(t, err, ErrContactNotFound)

	_, err = r.Update(ctx, mine.ID, 2, ContactUpdate{Name: ptr("hacked")})
	require.ErrorIs(t, err, ErrContactNotFound)

	require.ErrorIs(t, r.Delete(ctx, mine.ID, 2), ErrContactNotFound)

	// Still intact after the foreign attempts.
	got, err = r.GetByIDAndOwner(ctx, mine.ID, 1)
	require.NoError(t, err)
	require.Equal(t, "ann", got.Name)
}

func TestContactRepo_ListPagination(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := NewContactRepo(setupDB(t))

	var ids []uint64
	for i := 1; i <= 25; i++ {
		c := seedContact(t, r, 1, fmt.Sprintf("c%02d", i), false)
		ids = append(ids, c.ID)
	}
	// Another owner's contacts must not bleed into the page or the total.
	for i := 0; i < 5; i++ {
		seedContact(t, r, 2, fmt.Sprintf("other%d", i), true)
	}

	page, total, err := r.List(ctx, 1, 2, 10, nil)
	require.NoError(t, err)
	require.EqualValues(t, 25, total)
	require.Len(t, page, 10)
	// Page 2 with limit 10 holds records 11..20 in insertion order.
	for i, c := range page {
		require.Equal(t, ids[10+i], c.ID)
		require.Equal(t, fmt.Sprintf("c%02d", 11+i), c.Name)
	}

	// Last page is short; total stays page-independent.
	page, total, err = r.List(ctx, 1, 3, 10, nil)
	require.NoError(t, err)
	require.EqualValues(t, 25, total)
	require.Len(t, page, 5)

	// Beyond the data: empty page, same total.
	page, total, err = r.List(ctx, 1, 9, 10, nil)
	require.NoError(t, err)
	require.EqualValues(t, 25, total)
	require.Empty(t, page)
}

func TestContactRepo_ListFavoriteFilter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := NewContactRepo(setupDB(t))

	seedContact(t, r, 1, "plain1", false)
	fav1 := seedContact(t, r, 1, "fav1", true)
	seedContact(t, r, 1, "plain2", false)
	fav2 := seedContact(t, r, 1, "fav2", true)

	favs, total, err := r.List(ctx, 1, 1, 20, ptr(true))
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Equal(t, []model.Contact{fav1, fav2}, favs)

	rest, total, err := r.List(ctx, 1, 1, 20, ptr(false))
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, rest, 2)
	for _, c := range rest {
		require.False(t, c.Favorite)
	}
}

func TestContactRepo_PartialUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := NewContactRepo(setupDB(t))

	c := seedContact(t, r, 1, "ann", false)

	updated, err := r.Update(ctx, c.ID, 1, ContactUpdate{Phone: ptr("999")})
	require.NoError(t, err)
	require.Equal(t, "999", updated.Phone)
	require.Equal(t, c.Name, updated.Name)
	require.Equal(t, c.Email, updated.Email)
	require.EqualValues(t, 1, updated.OwnerID)

	// An empty update degenerates to a read.
	same, err := r.Update(ctx, c.ID, 1, ContactUpdate{})
	require.NoError(t, err)
	require.Equal(t, updated, same)

	_, err = r.Update(ctx, 99999, 1, ContactUpdate{Phone: ptr("1")})
	require.ErrorIs(t, err, ErrContactNotFound)
}

func TestContactRepo_SetFavoriteAndDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := NewContactRepo(setupDB(t))

	c := seedContact(t, r, 1, "ann", false)

	got, err := r.SetFavorite(ctx, c.ID, 1, true)
	require.NoError(t, err)
	require.True(t, got.Favorite)

	// Setting the flag to its current value still succeeds.
	got, err = r.SetFavorite(ctx, c.ID, 1, true)
	require.NoError(t, err)
	require.True(t, got.Favorite)

	got, err = r.SetFavorite(ctx, c.ID, 1, false)
	require.NoError(t, err)
	require.False(t, got.Favorite)

	require.NoError(t, r.Delete(ctx, c.ID, 1))
	_, err = r.GetByIDAndOwner(ctx, c.ID, 1)
	require.ErrorIs(t, err, ErrContactNotFound)
	require.ErrorIs(t, r.Delete(ctx, c.ID, 1), ErrContactNotFound)
}

func ptr[T any](v T) *T { return &v }
