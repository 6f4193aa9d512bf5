package usecases_port

import (
	"context"

	"github.com/goncalofm90/foodi3/internal/core/domain"
)

type SearchItemsUseCasePort interface {
	// userID may be empty for anonymous callers.
	Execute(ctx context.Context, kind domain.ItemKind, query, userID string) (*domain.SearchResult, error)
}

type GetItemDetailsUseCasePort interface {
	Execute(ctx context.Context, kind domain.ItemKind, itemID, userID string) (*domain.AnnotatedDetails, error)
}
