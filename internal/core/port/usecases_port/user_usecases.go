package usecases_port

import (
	"context"

	"github.com/goncalofm90/foodi3/internal/core/domain"
)

type RegisterUserUseCasePort interface {
	Execute(ctx context.Context, user domain.User) (domain.RegistrationAction, error)
}

type SignOutUseCasePort interface {
	Execute(ctx context.Context, userID string) error
}
