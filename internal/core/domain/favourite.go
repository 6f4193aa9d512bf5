package domain

import (
	"fmt"
	"strings"
	"time"
)

// ItemKind discriminates between the two content domains.
type ItemKind string

const (
	ItemKindDish     ItemKind = "dish"
	ItemKindCocktail ItemKind = "cocktail"
)

// ParseItemKind accepts "dish"/"dishes" and "cocktail"/"cocktails" in any case.
func ParseItemKind(s string) (ItemKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dish", "dishes":
		return ItemKindDish, nil
	case "cocktail", "cocktails":
		return ItemKindCocktail, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownItemKind, s)
	}
}

func (k ItemKind) Valid() bool {
	return k == ItemKindDish || k == ItemKindCocktail
}

// PathSegment - the list page a kind lives under ("/dishes", "/cocktails").
func (k ItemKind) PathSegment() string {
	if k == ItemKindCocktail {
		return "cocktails"
	}
	return "dishes"
}

// FavouriteRecord is one persisted bookmark linking a user to a content item.
// Records are created and deleted, never updated in place.
type FavouriteRecord struct {
	RecordID     string
	OwnerID      string
	ItemID       string
	ItemKind     ItemKind
	ItemName     string
	ThumbnailURL string
	CreatedAt    time.Time
}

// Validate checks the fields the store boundary must never let through.
func (r FavouriteRecord) Validate() error {
	switch {
	case r.RecordID == "":
		return fmt.Errorf("%w: empty record id", ErrMalformedRecord)
	case r.OwnerID == "":
		return fmt.Errorf("%w: empty owner id", ErrMalformedRecord)
	case r.ItemID == "":
		return fmt.Errorf("%w: empty item id", ErrMalformedRecord)
	case !r.ItemKind.Valid():
		return fmt.Errorf("%w: unknown item kind %q", ErrMalformedRecord, r.ItemKind)
	}
	return nil
}

// DisplayItem is what list and detail pages render. It is never persisted.
type DisplayItem struct {
	ID        string
	Name      string
	Kind      ItemKind
	Category  string
	Thumbnail string
	Href      string
}

// ItemDetails extends DisplayItem with what the detail pages show.
type ItemDetails struct {
	DisplayItem
	// Area for dishes, "Alcoholic"/"Non alcoholic" for cocktails.
	Subcategory  string
	Glass        string
	Instructions string
	Ingredients  []string
}

// DisplayItemFromRecord rebuilds a card for the profile view out of the
// snapshot fields stored with the favourite.
func DisplayItemFromRecord(r FavouriteRecord, categoryLabel string) DisplayItem {
	return DisplayItem{
		ID:        r.ItemID,
		Name:      r.ItemName,
		Kind:      r.ItemKind,
		Category:  categoryLabel,
		Thumbnail: r.ThumbnailURL,
		Href:      "/" + r.ItemKind.PathSegment() + "/" + r.ItemID,
	}
}
