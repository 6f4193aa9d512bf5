package usecase

import (
	"context"
	"fmt"

	"github.com/goncalofm90/foodi3/internal/contextkeys"
	"github.com/goncalofm90/foodi3/internal/core/domain"
	"github.com/goncalofm90/foodi3/internal/core/port"
)

// RegisterUserUseCase mirrors a signed-in identity into the users table the
// first time it is seen.
type RegisterUserUseCase struct {
	users port.UserRepositoryPort
}

func NewRegisterUserUseCase(users port.UserRepositoryPort) *RegisterUserUseCase {
	return &RegisterUserUseCase{users: users}
}

func (uc *RegisterUserUseCase) Execute(ctx context.Context, user domain.User) (domain.RegistrationAction, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "RegisterUser",
		"user_id":  user.ID,
	})
	ucLogger.Info("Use case started", nil)

	if user.ID == "" {
		return "", domain.ErrNotAuthenticated
	}

	created, err := uc.users.CreateIfMissing(ctx, user)
	if err != nil {
		ucLogger.Error("Failed to register user", err, nil)
		return "", fmt.Errorf("failed to register user: %w", err)
	}

	action := domain.RegistrationSkipped
	if created {
		action = domain.RegistrationCreated
	}
	ucLogger.Info("Use case finished successfully", port.Fields{"action": action})
	return action, nil
}
