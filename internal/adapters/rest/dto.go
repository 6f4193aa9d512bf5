package rest

import "github.com/goncalofm90/foodi3/internal/core/domain"

// FavouriteItemRequest is the body of POST /favourites/toggle. Name and kind
// are only needed when the toggle ends up adding the item.
type FavouriteItemRequest struct {
	ID        string `json:"id" validate:"required,max=64"`
	Name      string `json:"name" validate:"max=256"`
	Kind      string `json:"kind" validate:"omitempty,oneof=dish dishes cocktail cocktails"`
	Thumbnail string `json:"thumbnail" validate:"omitempty,url,max=2048"`
}

// AddFavouriteRequest is the body of POST /favourites.
type AddFavouriteRequest struct {
	ID        string `json:"id" validate:"required,max=64"`
	Name      string `json:"name" validate:"required,max=256"`
	Kind      string `json:"kind" validate:"required,oneof=dish dishes cocktail cocktails"`
	Thumbnail string `json:"thumbnail" validate:"omitempty,url,max=2048"`
}

func toDisplayItem(id, name, kind, thumbnail string) (domain.DisplayItem, error) {
	item := domain.DisplayItem{ID: id, Name: name, Thumbnail: thumbnail}
	if kind == "" {
		return item, nil
	}
	k, err := domain.ParseItemKind(kind)
	if err != nil {
		return domain.DisplayItem{}, err
	}
	item.Kind = k
	item.Href = "/" + k.PathSegment() + "/" + id
	return item, nil
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Action    string `json:"action,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

type SnapshotResponse struct {
	UserID           string            `json:"user_id"`
	FavouriteItemIDs []string          `json:"favourite_item_ids"`
	RecordIDs        map[string]string `json:"record_ids"`
	Version          uint64            `json:"version"`
}

func toSnapshotResponse(s domain.FavouritesSnapshot) SnapshotResponse {
	recordIDs := s.RecordIDs
	if recordIDs == nil {
		recordIDs = map[string]string{}
	}
	return SnapshotResponse{
		UserID:           s.UserID,
		FavouriteItemIDs: s.SortedItemIDs(),
		RecordIDs:        recordIDs,
		Version:          s.Version,
	}
}

type ToggleResponse struct {
	ItemID     string           `json:"item_id"`
	Favourited bool             `json:"favourited"`
	RecordID   string           `json:"record_id,omitempty"`
	Snapshot   SnapshotResponse `json:"snapshot"`
}

// NoticeResponse is returned with 200 for outcomes that leave the index as it was.
type NoticeResponse struct {
	Notice   string           `json:"notice"`
	ItemID   string           `json:"item_id"`
	Snapshot SnapshotResponse `json:"snapshot"`
}

type ItemCardResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Category  string `json:"category"`
	Thumbnail string `json:"thumbnail"`
	Href      string `json:"href"`
	Favourite bool   `json:"favourite"`
	RecordID  string `json:"record_id,omitempty"`
	State     string `json:"state,omitempty"`
}

func toItemCard(item domain.DisplayItem) ItemCardResponse {
	return ItemCardResponse{
		ID:        item.ID,
		Name:      item.Name,
		Kind:      string(item.Kind),
		Category:  item.Category,
		Thumbnail: item.Thumbnail,
		Href:      item.Href,
	}
}

func toAnnotatedCard(item domain.DisplayItem, mark domain.FavouriteMark) ItemCardResponse {
	card := toItemCard(item)
	card.Favourite = mark.Favourited
	card.RecordID = mark.RecordID
	card.State = mark.State.String()
	return card
}

type ItemDetailsResponse struct {
	ItemCardResponse
	Subcategory  string   `json:"subcategory"`
	Glass        string   `json:"glass,omitempty"`
	Instructions string   `json:"instructions"`
	Ingredients  []string `json:"ingredients"`
}

type SearchResponse struct {
	Kind  string             `json:"kind"`
	Query string             `json:"query"`
	Items []ItemCardResponse `json:"items"`
}

type FavouritesListResponse struct {
	Items []ItemCardResponse `json:"items"`
	Total int                `json:"total"`
}

type RegisterUserResponse struct {
	Action string `json:"action"`
}
