package inmemory

import (
	"context"
	"testing"

	"github.com/goncalofm90/foodi3/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(id, owner, item string) domain.FavouriteRecord {
	return domain.FavouriteRecord{RecordID: id, OwnerID: owner, ItemID: item, ItemKind: domain.ItemKindDish, ItemName: "Dish " + item}
}

func TestFavouritesStore_OwnerScoping(t *testing.T) {
	ctx := context.Background()
	s := NewFavouritesStore()

	_, err := s.Create(ctx, record("r1", "u1", "52772"))
	require.NoError(t, err)
	_, err = s.Create(ctx, record("r2", "u2", "52772"))
	require.NoError(t, err)

	mine, err := s.ListByOwner(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "r1", mine[0].RecordID)
	assert.False(t, mine[0].CreatedAt.IsZero())

	err = s.Delete(ctx, "u1", "r2")
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	require.NoError(t, s.Delete(ctx, "u1", "r1"))
	assert.ErrorIs(t, s.Delete(ctx, "u1", "r1"), domain.ErrRecordNotFound)
}

func TestFavouritesStore_RejectsSecondRecordForItem(t *testing.T) {
	ctx := context.Background()
	s := NewFavouritesStore()

	_, err := s.Create(ctx, record("r1", "u1", "52772"))
	require.NoError(t, err)
	_, err = s.Create(ctx, record("r2", "u1", "52772"))
	assert.ErrorIs(t, err, domain.ErrDuplicateRecord)

	_, err = s.Create(ctx, domain.FavouriteRecord{RecordID: "r3", OwnerID: "u1"})
	assert.ErrorIs(t, err, domain.ErrMalformedRecord)
}

func TestUserRepository_CreateIfMissing(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()

	created, err := r.CreateIfMissing(ctx, domain.User{ID: "u1", Email: "a@b.c"})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = r.CreateIfMissing(ctx, domain.User{ID: "u1", Email: "other@b.c"})
	require.NoError(t, err)
	assert.False(t, created)

	u, err := r.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", u.Email)

	missing, err := r.FindByID(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
