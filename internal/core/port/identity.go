package port

import (
	"context"

	"github.com/goncalofm90/foodi3/internal/core/domain"
)

// IdentityProviderPort resolves a session credential to the signed-in user.
// Login, logout and OAuth live entirely in the external provider.
type IdentityProviderPort interface {
	CurrentUser(ctx context.Context, credential string) (*domain.User, error)
}

// UserRepositoryPort keeps the application's copy of signed-in users.
type UserRepositoryPort interface {
	FindByID(ctx context.Context, userID string) (*domain.User, error)
	// CreateIfMissing returns false when a row for the user already existed.
	CreateIfMissing(ctx context.Context, user domain.User) (bool, error)
}
