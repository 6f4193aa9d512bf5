package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/goncalofm90/foodi3/internal/contextkeys"
	"github.com/goncalofm90/foodi3/internal/core/domain"
	"github.com/goncalofm90/foodi3/internal/core/port"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// GetUserFavouritesUseCase builds the profile page list straight from the
// stored records, so it needs no content API round trips.
type GetUserFavouritesUseCase struct {
	store port.FavouritesStorePort
}

func NewGetUserFavouritesUseCase(store port.FavouritesStorePort) *GetUserFavouritesUseCase {
	return &GetUserFavouritesUseCase{store: store}
}

func (uc *GetUserFavouritesUseCase) Execute(ctx context.Context, userID string) ([]domain.DisplayItem, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "GetUserFavourites",
		"user_id":  userID,
	})
	ucLogger.Info("Use case started", nil)

	if userID == "" {
		return nil, domain.ErrNotAuthenticated
	}

	records, err := uc.store.ListByOwner(ctx, userID)
	if err != nil {
		ucLogger.Error("Failed to list favourites", err, nil)
		return nil, fmt.Errorf("%w: %w", domain.ErrRemoteReadFailed, err)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	titler := cases.Title(language.English)
	items := make([]domain.DisplayItem, 0, len(records))
	for _, r := range records {
		if err := r.Validate(); err != nil || r.OwnerID != userID {
			ucLogger.Warn("Skipping unusable favourite record", port.Fields{"record_id": r.RecordID})
			continue
		}
		items = append(items, domain.DisplayItemFromRecord(r, titler.String(string(r.ItemKind))))
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"favourites_count": len(items)})
	return items, nil
}
