package domain

import "sort"

// ItemState is the per-item state as seen by the synchronizer.
type ItemState int

const (
	NotFavourited ItemState = iota
	Pending
	Favourited
)

func (s ItemState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Favourited:
		return "favourited"
	default:
		return "not_favourited"
	}
}

// FavouritesSnapshot is a read-only copy of the local favourites index.
// Presentation code renders from it and never mutates the index directly.
type FavouritesSnapshot struct {
	UserID    string
	ItemIDs   map[string]struct{}
	RecordIDs map[string]string
	Version   uint64
}

// Has reports whether itemID is favourited in this snapshot.
func (s FavouritesSnapshot) Has(itemID string) bool {
	_, ok := s.ItemIDs[itemID]
	return ok
}

// SortedItemIDs returns the favourited ids in a stable order.
func (s FavouritesSnapshot) SortedItemIDs() []string {
	ids := make([]string, 0, len(s.ItemIDs))
	for id := range s.ItemIDs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ToggleResult is returned to the caller so that every list rendering the
// same item can converge without re-querying the store.
type ToggleResult struct {
	ItemID     string
	Favourited bool
	// RecordID is set for adds only.
	RecordID string
	Snapshot FavouritesSnapshot
}

// FavouriteEventType names a confirmed change of the index.
type FavouriteEventType string

const (
	FavouriteAdded   FavouriteEventType = "favourite.added"
	FavouriteRemoved FavouriteEventType = "favourite.removed"
)

// FavouriteEvent is emitted after a confirmed remote write.
type FavouriteEvent struct {
	Type     FavouriteEventType
	Record   FavouriteRecord
	Snapshot FavouritesSnapshot
}
