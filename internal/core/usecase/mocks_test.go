package usecase

import (
	"context"
	"testing"

	"github.com/goncalofm90/foodi3/internal/adapters/inmemory"
	"github.com/goncalofm90/foodi3/internal/core/domain"
	"github.com/goncalofm90/foodi3/internal/core/session"
	"github.com/goncalofm90/foodi3/internal/core/synchronizer"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockContentSource struct {
	mock.Mock
	kind domain.ItemKind
}

func (m *mockContentSource) Kind() domain.ItemKind { return m.kind }

func (m *mockContentSource) Search(ctx context.Context, query string) ([]domain.DisplayItem, error) {
	args := m.Called(ctx, query)
	items, _ := args.Get(0).([]domain.DisplayItem)
	return items, args.Error(1)
}

func (m *mockContentSource) GetByID(ctx context.Context, id string) (*domain.ItemDetails, error) {
	args := m.Called(ctx, id)
	details, _ := args.Get(0).(*domain.ItemDetails)
	return details, args.Error(1)
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) ListByOwner(ctx context.Context, ownerID string) ([]domain.FavouriteRecord, error) {
	args := m.Called(ctx, ownerID)
	records, _ := args.Get(0).([]domain.FavouriteRecord)
	return records, args.Error(1)
}

func (m *mockStore) Create(ctx context.Context, record domain.FavouriteRecord) (*domain.FavouriteRecord, error) {
	args := m.Called(ctx, record)
	created, _ := args.Get(0).(*domain.FavouriteRecord)
	return created, args.Error(1)
}

func (m *mockStore) Delete(ctx context.Context, ownerID, recordID string) error {
	return m.Called(ctx, ownerID, recordID).Error(0)
}

type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) FindByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *mockUsers) CreateIfMissing(ctx context.Context, user domain.User) (bool, error) {
	args := m.Called(ctx, user)
	return args.Bool(0), args.Error(1)
}

func newSessions(t *testing.T, store *inmemory.FavouritesStore) *session.Registry {
	t.Helper()
	r, err := session.NewRegistry(8, func() *synchronizer.Synchronizer {
		return synchronizer.NewSynchronizer(store, nil, nil, nil, synchronizer.Config{})
	})
	require.NoError(t, err)
	return r
}

func newSessionsWithStore(t *testing.T, store *mockStore) *session.Registry {
	t.Helper()
	r, err := session.NewRegistry(8, func() *synchronizer.Synchronizer {
		return synchronizer.NewSynchronizer(store, nil, nil, nil, synchronizer.Config{})
	})
	require.NoError(t, err)
	return r
}
