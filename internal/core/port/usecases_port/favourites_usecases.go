package usecases_port

import (
	"context"

	"github.com/goncalofm90/foodi3/internal/core/domain"
)

type LoadFavouritesUseCasePort interface {
	Execute(ctx context.Context, userID string) (domain.FavouritesSnapshot, error)
}

type GetFavouritesSnapshotUseCasePort interface {
	// Loads the index first when the user has no session yet.
	Execute(ctx context.Context, userID string) (domain.FavouritesSnapshot, error)
}

type ToggleFavouriteUseCasePort interface {
	Execute(ctx context.Context, userID string, item domain.DisplayItem) (*domain.ToggleResult, error)
}

type AddFavouriteUseCasePort interface {
	Execute(ctx context.Context, userID string, item domain.DisplayItem) (*domain.ToggleResult, error)
}

type RemoveFavouriteUseCasePort interface {
	Execute(ctx context.Context, userID string, item domain.DisplayItem) (*domain.ToggleResult, error)
}

type GetUserFavouritesUseCasePort interface {
	// Profile view: newest first.
	Execute(ctx context.Context, userID string) ([]domain.DisplayItem, error)
}
