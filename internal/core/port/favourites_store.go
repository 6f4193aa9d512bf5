package port

import (
	"context"

	"github.com/goncalofm90/foodi3/internal/core/domain"
)

// FavouritesStorePort is the remote per-user favourites table.
// Reads and writes are restricted to the owning user.
type FavouritesStorePort interface {
	// ListByOwner returns only the records whose owner is ownerID.
	ListByOwner(ctx context.Context, ownerID string) ([]domain.FavouriteRecord, error)
	// Create fails with domain.ErrDuplicateRecord when the owner already has
	// a record for the same item.
	Create(ctx context.Context, record domain.FavouriteRecord) (*domain.FavouriteRecord, error)
	// Delete fails with domain.ErrRecordNotFound or domain.ErrPermissionDenied.
	Delete(ctx context.Context, ownerID, recordID string) error
}
