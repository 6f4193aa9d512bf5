// Package inmemory holds map-backed stores for local runs (STORE_DRIVER=memory)
// and tests. They enforce the same owner scoping and uniqueness rules as the
// Postgres adapter.
package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/goncalofm90/foodi3/internal/core/domain"
)

type FavouritesStore struct {
	mu      sync.RWMutex
	records map[string]domain.FavouriteRecord // record id -> record
	now     func() time.Time
}

func NewFavouritesStore() *FavouritesStore {
	return &FavouritesStore{
		records: make(map[string]domain.FavouriteRecord),
		now:     time.Now,
	}
}

func (s *FavouritesStore) ListByOwner(ctx context.Context, ownerID string) ([]domain.FavouriteRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]domain.FavouriteRecord, 0)
	for _, r := range s.records {
		if r.OwnerID == ownerID {
			records = append(records, r)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	return records, nil
}

func (s *FavouritesStore) Create(ctx context.Context, record domain.FavouriteRecord) (*domain.FavouriteRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[record.RecordID]; exists {
		return nil, fmt.Errorf("%w: record id %s already used", domain.ErrDuplicateRecord, record.RecordID)
	}
	for _, r := range s.records {
		if r.OwnerID == record.OwnerID && r.ItemID == record.ItemID {
			return nil, fmt.Errorf("%w: owner %s already has item %s", domain.ErrDuplicateRecord, record.OwnerID, record.ItemID)
		}
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = s.now().UTC()
	}
	s.records[record.RecordID] = record
	return &record, nil
}

func (s *FavouritesStore) Delete(ctx context.Context, ownerID, recordID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[recordID]
	if !ok {
		return domain.ErrRecordNotFound
	}
	if r.OwnerID != ownerID {
		return domain.ErrPermissionDenied
	}
	delete(s.records, recordID)
	return nil
}
