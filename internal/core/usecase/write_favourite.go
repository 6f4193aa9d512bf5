package usecase

import (
	"context"

	"github.com/goncalofm90/foodi3/internal/contextkeys"
	"github.com/goncalofm90/foodi3/internal/core/domain"
	"github.com/goncalofm90/foodi3/internal/core/port"
	"github.com/goncalofm90/foodi3/internal/core/session"
	"github.com/goncalofm90/foodi3/internal/core/synchronizer"
)

type writeFunc func(s *synchronizer.Synchronizer, ctx context.Context, item domain.DisplayItem, userID string) (*domain.ToggleResult, error)

// favouriteWriter is shared by the toggle, add and remove use cases; they
// differ only in the synchronizer method they call.
type favouriteWriter struct {
	name     string
	sessions *session.Registry
	write    writeFunc
}

func (w favouriteWriter) execute(ctx context.Context, userID string, item domain.DisplayItem) (*domain.ToggleResult, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": w.name,
		"user_id":  userID,
		"item_id":  item.ID,
	})
	ucLogger.Info("Use case started", nil)

	if userID == "" {
		ucLogger.Warn("Favourite change requested by anonymous caller", nil)
		return nil, domain.ErrNotAuthenticated
	}

	s, err := loadedSession(ctx, w.sessions, userID, ucLogger)
	if err != nil {
		ucLogger.Error("Failed to open session", err, nil)
		return nil, err
	}

	result, err := w.write(s, ctx, item, userID)
	if err != nil {
		if domain.IsBenign(err) {
			ucLogger.Info("Use case finished with notice", port.Fields{"notice": err.Error()})
		} else {
			ucLogger.Error("Synchronizer rejected the change", err, nil)
		}
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"favourited": result.Favourited})
	return result, nil
}

type ToggleFavouriteUseCase struct {
	favouriteWriter
}

func NewToggleFavouriteUseCase(sessions *session.Registry) *ToggleFavouriteUseCase {
	return &ToggleFavouriteUseCase{favouriteWriter{name: "ToggleFavourite", sessions: sessions, write: (*synchronizer.Synchronizer).Toggle}}
}

func (uc *ToggleFavouriteUseCase) Execute(ctx context.Context, userID string, item domain.DisplayItem) (*domain.ToggleResult, error) {
	return uc.execute(ctx, userID, item)
}

type AddFavouriteUseCase struct {
	favouriteWriter
}

func NewAddFavouriteUseCase(sessions *session.Registry) *AddFavouriteUseCase {
	return &AddFavouriteUseCase{favouriteWriter{name: "AddFavourite", sessions: sessions, write: (*synchronizer.Synchronizer).Add}}
}

func (uc *AddFavouriteUseCase) Execute(ctx context.Context, userID string, item domain.DisplayItem) (*domain.ToggleResult, error) {
	return uc.execute(ctx, userID, item)
}

type RemoveFavouriteUseCase struct {
	favouriteWriter
}

func NewRemoveFavouriteUseCase(sessions *session.Registry) *RemoveFavouriteUseCase {
	return &RemoveFavouriteUseCase{favouriteWriter{name: "RemoveFavourite", sessions: sessions, write: (*synchronizer.Synchronizer).Remove}}
}

func (uc *RemoveFavouriteUseCase) Execute(ctx context.Context, userID string, item domain.DisplayItem) (*domain.ToggleResult, error) {
	return uc.execute(ctx, userID, item)
}
