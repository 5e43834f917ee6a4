package models

import "time"

// Room is a bookable teaching space.
type Room struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Capacity   int       `db:"capacity" json:"capacity"`
	Category   string    `db:"category" json:"category,omitempty"`
	BuildingID string    `db:"building_id" json:"building_id,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// RoomFilter describes query params for listing rooms.
type RoomFilter struct {
	MinCapacity int
	Category    string
	BuildingID  string
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}
