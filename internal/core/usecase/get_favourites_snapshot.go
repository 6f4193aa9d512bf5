package usecase

import (
	"context"

	"github.com/goncalofm90/foodi3/internal/contextkeys"
	"github.com/goncalofm90/foodi3/internal/core/domain"
	"github.com/goncalofm90/foodi3/internal/core/port"
	"github.com/goncalofm90/foodi3/internal/core/session"
)

type GetFavouritesSnapshotUseCase struct {
	sessions *session.Registry
}

func NewGetFavouritesSnapshotUseCase(sessions *session.Registry) *GetFavouritesSnapshotUseCase {
	return &GetFavouritesSnapshotUseCase{sessions: sessions}
}

func (uc *GetFavouritesSnapshotUseCase) Execute(ctx context.Context, userID string) (domain.FavouritesSnapshot, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "GetFavouritesSnapshot",
		"user_id":  userID,
	})

	if userID == "" {
		return domain.FavouritesSnapshot{}, domain.ErrNotAuthenticated
	}

	s, err := loadedSession(ctx, uc.sessions, userID, ucLogger)
	if err != nil {
		ucLogger.Error("Failed to open session", err, nil)
		return domain.FavouritesSnapshot{}, err
	}
	return s.Snapshot(), nil
}
