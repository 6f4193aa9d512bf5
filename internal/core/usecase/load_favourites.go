package usecase

import (
	"context"

	"github.com/goncalofm90/foodi3/internal/contextkeys"
	"github.com/goncalofm90/foodi3/internal/core/domain"
	"github.com/goncalofm90/foodi3/internal/core/port"
	"github.com/goncalofm90/foodi3/internal/core/session"
)

type LoadFavouritesUseCase struct {
	sessions *session.Registry
}

func NewLoadFavouritesUseCase(sessions *session.Registry) *LoadFavouritesUseCase {
	return &LoadFavouritesUseCase{sessions: sessions}
}

// Execute rebuilds the caller's index from the store. It runs whenever the
// active user changes (sign-in, page mount).
func (uc *LoadFavouritesUseCase) Execute(ctx context.Context, userID string) (domain.FavouritesSnapshot, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "LoadFavourites",
		"user_id":  userID,
	})
	ucLogger.Info("Use case started", nil)

	if userID == "" {
		return domain.FavouritesSnapshot{ItemIDs: map[string]struct{}{}, RecordIDs: map[string]string{}}, domain.ErrNotAuthenticated
	}

	s, fresh := uc.sessions.For(userID)
	snapshot, err := s.Load(ctx, userID)
	if err != nil {
		// The session stays unloaded, so the next write or snapshot loads again.
		ucLogger.Error("Failed to load favourites", err, port.Fields{"new_session": fresh})
		return snapshot, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"favourites_count": len(snapshot.ItemIDs)})
	return snapshot, nil
}
