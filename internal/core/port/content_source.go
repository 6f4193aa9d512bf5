package port

import (
	"context"

	"github.com/goncalofm90/foodi3/internal/core/domain"
)

// ContentSourcePort maps a free-text query to display items. Meals and
// cocktails are two instances with the same shape.
type ContentSourcePort interface {
	Kind() domain.ItemKind
	Search(ctx context.Context, query string) ([]domain.DisplayItem, error)
	// GetByID returns nil, nil when the source has no such item.
	GetByID(ctx context.Context, id string) (*domain.ItemDetails, error)
}
