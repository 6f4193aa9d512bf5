package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goncalofm90/foodi3/internal/adapters/inmemory"
	"github.com/goncalofm90/foodi3/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var dish = domain.DisplayItem{ID: "52772", Name: "Teriyaki Chicken Casserole", Kind: domain.ItemKindDish}

func TestToggleFavourite_LoadsSessionBeforeFirstWrite(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewFavouritesStore()
	_, err := store.Create(ctx, domain.FavouriteRecord{
		RecordID: "r1", OwnerID: "u1", ItemID: dish.ID, ItemKind: domain.ItemKindDish, ItemName: dish.Name,
	})
	require.NoError(t, err)
	sessions := newSessions(t, store)

	// Without the initial load this would be an add hitting a duplicate.
	res, err := NewToggleFavouriteUseCase(sessions).Execute(ctx, "u1", dish)
	require.NoError(t, err)
	assert.False(t, res.Favourited)

	records, err := store.ListByOwner(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestToggleFavourite_RequiresUser(t *testing.T) {
	sessions := newSessions(t, inmemory.NewFavouritesStore())

	_, err := NewToggleFavouriteUseCase(sessions).Execute(context.Background(), "", dish)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	assert.Zero(t, sessions.Len())
}

func TestAddAndRemoveFavourite(t *testing.T) {
	ctx := context.Background()
	sessions := newSessions(t, inmemory.NewFavouritesStore())

	added, err := NewAddFavouriteUseCase(sessions).Execute(ctx, "u1", dish)
	require.NoError(t, err)
	assert.True(t, added.Favourited)

	_, err = NewAddFavouriteUseCase(sessions).Execute(ctx, "u1", dish)
	assert.ErrorIs(t, err, domain.ErrAlreadyFavourited)

	removed, err := NewRemoveFavouriteUseCase(sessions).Execute(ctx, "u1", domain.DisplayItem{ID: dish.ID})
	require.NoError(t, err)
	assert.False(t, removed.Favourited)

	snap, err := NewGetFavouritesSnapshotUseCase(sessions).Execute(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, snap.ItemIDs)
}

func TestGetFavouritesSnapshot_FailedFirstLoadIsRetried(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{}
	store.On("ListByOwner", mock.Anything, "u1").Return(nil, errors.New("db down")).Once()
	store.On("ListByOwner", mock.Anything, "u1").Return([]domain.FavouriteRecord{
		{RecordID: "r1", OwnerID: "u1", ItemID: "11007", ItemKind: domain.ItemKindCocktail, ItemName: "Margarita"},
	}, nil).Once()

	sessions := newSessionsWithStore(t, store)
	uc := NewGetFavouritesSnapshotUseCase(sessions)

	_, err := uc.Execute(ctx, "u1")
	require.ErrorIs(t, err, domain.ErrRemoteReadFailed)

	snap, err := uc.Execute(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, snap.Has("11007"))
	store.AssertExpectations(t)
}

func TestLoadFavourites(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewFavouritesStore()
	sessions := newSessions(t, store)
	_, err := store.Create(ctx, domain.FavouriteRecord{
		RecordID: "r1", OwnerID: "u1", ItemID: dish.ID, ItemKind: domain.ItemKindDish, ItemName: dish.Name,
	})
	require.NoError(t, err)

	snap, err := NewLoadFavouritesUseCase(sessions).Execute(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "r1", snap.RecordIDs[dish.ID])

	_, err = NewLoadFavouritesUseCase(sessions).Execute(ctx, "")
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestLoadFavourites_FailedLoadIsRetriedByToggle(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{}
	store.On("ListByOwner", mock.Anything, "u1").Return(nil, errors.New("db down")).Once()
	store.On("ListByOwner", mock.Anything, "u1").Return([]domain.FavouriteRecord{
		{RecordID: "r1", OwnerID: "u1", ItemID: dish.ID, ItemKind: domain.ItemKindDish, ItemName: dish.Name},
	}, nil).Once()
	store.On("Delete", mock.Anything, "u1", "r1").Return(nil).Once()
	sessions := newSessionsWithStore(t, store)

	_, err := NewLoadFavouritesUseCase(sessions).Execute(ctx, "u1")
	require.ErrorIs(t, err, domain.ErrRemoteReadFailed)

	// The toggle loads again, sees the existing record and removes it.
	res, err := NewToggleFavouriteUseCase(sessions).Execute(ctx, "u1", dish)
	require.NoError(t, err)
	assert.False(t, res.Favourited)
	store.AssertExpectations(t)
	store.AssertNumberOfCalls(t, "ListByOwner", 2)
}

func TestRemoveFavourite_WaitsForFirstLoadOfConcurrentRequest(t *testing.T) {
	ctx := context.Background()
	listEntered := make(chan struct{})
	release := make(chan struct{})
	store := &mockStore{}
	store.On("ListByOwner", mock.Anything, "u1").
		Run(func(mock.Arguments) {
			close(listEntered)
			<-release
		}).
		Return([]domain.FavouriteRecord{
			{RecordID: "r1", OwnerID: "u1", ItemID: dish.ID, ItemKind: domain.ItemKindDish, ItemName: dish.Name},
		}, nil).Once()
	store.On("Delete", mock.Anything, "u1", "r1").Return(nil).Once()
	sessions := newSessionsWithStore(t, store)

	snapshotDone := make(chan error, 1)
	go func() {
		_, err := NewGetFavouritesSnapshotUseCase(sessions).Execute(ctx, "u1")
		snapshotDone <- err
	}()
	<-listEntered

	removeDone := make(chan error, 1)
	go func() {
		res, err := NewRemoveFavouriteUseCase(sessions).Execute(ctx, "u1", domain.DisplayItem{ID: dish.ID})
		if err == nil {
			assert.False(t, res.Favourited)
		}
		removeDone <- err
	}()

	select {
	case err := <-removeDone:
		t.Fatalf("remove finished before the first load: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-snapshotDone)
	require.NoError(t, <-removeDone)
	store.AssertExpectations(t)
}

func TestGetUserFavourites_BuildsProfileCards(t *testing.T) {
	ctx := context.Background()
	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := &mockStore{}
	store.On("ListByOwner", mock.Anything, "u1").Return([]domain.FavouriteRecord{
		{RecordID: "r1", OwnerID: "u1", ItemID: "52772", ItemKind: domain.ItemKindDish, ItemName: "Teriyaki", ThumbnailURL: "t.jpg", CreatedAt: older},
		{RecordID: "r2", OwnerID: "u1", ItemID: "11007", ItemKind: domain.ItemKindCocktail, ItemName: "Margarita", CreatedAt: older.Add(time.Hour)},
		{RecordID: "r3", OwnerID: "u1", ItemID: "", ItemKind: domain.ItemKindDish},
	}, nil)

	items, err := NewGetUserFavouritesUseCase(store).Execute(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, domain.DisplayItem{
		ID: "11007", Name: "Margarita", Kind: domain.ItemKindCocktail, Category: "Cocktail", Href: "/cocktails/11007",
	}, items[0])
	assert.Equal(t, "Dish", items[1].Category)
	assert.Equal(t, "/dishes/52772", items[1].Href)
	assert.Equal(t, "t.jpg", items[1].Thumbnail)
}

func TestGetUserFavourites_StoreFailure(t *testing.T) {
	store := &mockStore{}
	store.On("ListByOwner", mock.Anything, "u1").Return(nil, errors.New("timeout"))

	_, err := NewGetUserFavouritesUseCase(store).Execute(context.Background(), "u1")
	assert.ErrorIs(t, err, domain.ErrRemoteReadFailed)
}

func TestSignOut_DropsSession(t *testing.T) {
	ctx := context.Background()
	sessions := newSessions(t, inmemory.NewFavouritesStore())
	_, err := NewAddFavouriteUseCase(sessions).Execute(ctx, "u1", dish)
	require.NoError(t, err)

	require.NoError(t, NewSignOutUseCase(sessions).Execute(ctx, "u1"))
	assert.Zero(t, sessions.Len())
	require.NoError(t, NewSignOutUseCase(sessions).Execute(ctx, "u1"))
}

func TestRegisterUser(t *testing.T) {
	ctx := context.Background()
	users := &mockUsers{}
	u := domain.User{ID: "u1", Email: "cook@example.com"}
	users.On("CreateIfMissing", mock.Anything, u).Return(true, nil).Once()
	users.On("CreateIfMissing", mock.Anything, u).Return(false, nil).Once()

	uc := NewRegisterUserUseCase(users)
	action, err := uc.Execute(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, domain.RegistrationCreated, action)

	action, err = uc.Execute(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, domain.RegistrationSkipped, action)

	_, err = uc.Execute(ctx, domain.User{})
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	users.AssertExpectations(t)
}
