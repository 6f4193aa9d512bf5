package usecase

import (
	"context"

	"github.com/goncalofm90/foodi3/internal/contextkeys"
	"github.com/goncalofm90/foodi3/internal/core/port"
	"github.com/goncalofm90/foodi3/internal/core/session"
)

type SignOutUseCase struct {
	sessions *session.Registry
}

func NewSignOutUseCase(sessions *session.Registry) *SignOutUseCase {
	return &SignOutUseCase{sessions: sessions}
}

// Execute clears the caller's favourites index. Signing out twice is fine.
func (uc *SignOutUseCase) Execute(ctx context.Context, userID string) error {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "SignOut",
		"user_id":  userID,
	})

	dropped := uc.sessions.Drop(userID)
	ucLogger.Info("Session closed", port.Fields{"had_session": dropped})
	return nil
}
