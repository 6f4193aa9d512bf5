package usecase

import (
	"context"
	"fmt"

	"github.com/goncalofm90/foodi3/internal/contextkeys"
	"github.com/goncalofm90/foodi3/internal/core/domain"
	"github.com/goncalofm90/foodi3/internal/core/port"
	"github.com/goncalofm90/foodi3/internal/core/session"
)

type GetItemDetailsUseCase struct {
	sources  map[domain.ItemKind]port.ContentSourcePort
	sessions *session.Registry
}

func NewGetItemDetailsUseCase(sessions *session.Registry, sources ...port.ContentSourcePort) *GetItemDetailsUseCase {
	return &GetItemDetailsUseCase{sources: sourcesByKind(sources), sessions: sessions}
}

func (uc *GetItemDetailsUseCase) Execute(ctx context.Context, kind domain.ItemKind, itemID, userID string) (*domain.AnnotatedDetails, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "GetItemDetails",
		"kind":     kind,
		"item_id":  itemID,
		"user_id":  userID,
	})
	ucLogger.Info("Use case started", nil)

	source, ok := uc.sources[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownItemKind, kind)
	}
	if itemID == "" {
		return nil, fmt.Errorf("%w: empty item id", domain.ErrInvalidItem)
	}

	details, err := source.GetByID(ctx, itemID)
	if err != nil {
		ucLogger.Error("Content source lookup failed", err, nil)
		return nil, err
	}
	if details == nil {
		ucLogger.Info("Item not found", nil)
		return nil, fmt.Errorf("%w: %s %s", domain.ErrItemNotFound, kind, itemID)
	}

	mark := annotator(ctx, uc.sessions, userID, ucLogger)(details.ID)

	ucLogger.Info("Use case finished successfully", nil)
	return &domain.AnnotatedDetails{ItemDetails: *details, FavouriteMark: mark}, nil
}
