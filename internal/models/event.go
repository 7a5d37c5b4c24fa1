package models

import "time"

// EventType задаёт тип изменения позиции.
type EventType string

const (
	EventItemCreated EventType = "item.created"
	EventItemUpdated EventType = "item.updated"
	EventItemDeleted EventType = "item.deleted"
)

// ItemEvent публикуется после успешного изменения позиции.
type ItemEvent struct {
	EventID    string    `json:"event_id"`
	Type       EventType `json:"type"`
	ItemID     int64     `json:"item_id"`
	Item       *Item     `json:"item,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
