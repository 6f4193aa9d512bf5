package port

import (
	"context"

	"github.com/goncalofm90/foodi3/internal/core/domain"
)

// FavouriteEventsPort announces confirmed favourite changes to other services.
type FavouriteEventsPort interface {
	PublishFavouriteEvent(ctx context.Context, event domain.FavouriteEvent) error
}

// SnapshotNotifierPort pushes a fresh snapshot to every open view of a user.
// NotifySnapshot is called with the synchronizer's lock held and must not block.
type SnapshotNotifierPort interface {
	NotifySnapshot(ctx context.Context, snapshot domain.FavouritesSnapshot)
}

// SyncMetricsPort records synchronizer outcomes.
type SyncMetricsPort interface {
	ObserveLoad(outcome string)
	ObserveWrite(action string, kind domain.ItemKind, outcome string)
}
