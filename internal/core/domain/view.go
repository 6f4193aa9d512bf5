package domain

// FavouriteMark is the favourite state rendered next to an item.
type FavouriteMark struct {
	Favourited bool
	RecordID   string
	State      ItemState
}

// MarkFromSnapshot reads the mark of itemID out of a snapshot. Pending items
// keep the last confirmed membership.
func MarkFromSnapshot(s FavouritesSnapshot, itemID string, state ItemState) FavouriteMark {
	return FavouriteMark{
		Favourited: s.Has(itemID),
		RecordID:   s.RecordIDs[itemID],
		State:      state,
	}
}

// AnnotatedItem is a search result card for a possibly signed-in caller.
type AnnotatedItem struct {
	DisplayItem
	FavouriteMark
}

// AnnotatedDetails is a detail page for a possibly signed-in caller.
type AnnotatedDetails struct {
	ItemDetails
	FavouriteMark
}

// SearchResult groups one page of search results.
type SearchResult struct {
	Kind  ItemKind
	Query string
	Items []AnnotatedItem
}
