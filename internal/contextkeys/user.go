package contextkeys

import (
	"context"

	"github.com/goncalofm90/foodi3/internal/core/domain"
)

type userKeyType struct{}

var userKey = userKeyType{}

// ContextWithUser stores the authenticated user resolved by the auth middleware.
func ContextWithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns nil for anonymous requests.
func UserFromContext(ctx context.Context) *domain.User {
	if user, ok := ctx.Value(userKey).(*domain.User); ok {
		return user
	}
	return nil
}
