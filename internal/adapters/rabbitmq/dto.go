package rabbitmq

import "time"

// FavouriteChangedEventDTO is the wire form of FavouriteChangedEvent/1.0.0.
type FavouriteChangedEventDTO struct {
	EventID          string    `json:"event_id"`
	Type             string    `json:"type"`
	OccurredAt       time.Time `json:"occurred_at"`
	OwnerID          string    `json:"owner_id"`
	RecordID         string    `json:"record_id"`
	ItemID           string    `json:"item_id"`
	ItemKind         string    `json:"item_kind"`
	ItemName         string    `json:"item_name,omitempty"`
	ThumbnailURL     string    `json:"thumbnail_url,omitempty"`
	FavouriteItemIDs []string  `json:"favourite_item_ids"`
	IndexVersion     uint64    `json:"index_version"`
}
