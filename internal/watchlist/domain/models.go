// Package domain contains the watch-list models. Items are created from
// approved inspection findings and resolved by job cards.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type ItemStatus string

const (
	StatusActive          ItemStatus = "active"
	StatusResolved        ItemStatus = "resolved"
	StatusMachineDisposed ItemStatus = "machine_disposed"
)

// Component is a catalog entry maintained outside the core. The engine
// only reads it for name matching.
type Component struct {
	ID   snowflake.ID `gorm:"primaryKey" json:"id"`
	Name string       `gorm:"type:text;not null" json:"name"`
}

// TableName sets the database table name.
func (Component) TableName() string { return "components" }

// WatchListItem is a flagged finding awaiting repair. ComponentID is a
// best-effort match against the catalog and may be null.
type WatchListItem struct {
	ID                 snowflake.ID  `gorm:"primaryKey" json:"id"`
	VehicleID          snowflake.ID  `gorm:"not null;index" json:"vehicle_id"`
	InspectionResultID snowflake.ID  `gorm:"not null" json:"inspection_result_id"`
	ComponentID        *snowflake.ID `json:"component_id,omitempty"`
	ItemName           string        `gorm:"type:text;not null" json:"item_name"`
	RatingAtCreation   string        `gorm:"type:text;not null" json:"rating_at_creation"`
	Status             ItemStatus    `gorm:"type:text;not null;default:active" json:"status"`
	ResolvedAt         *time.Time    `json:"resolved_at,omitempty"`
	ResolvedByJobCard  *snowflake.ID `gorm:"column:resolved_by_job_card_id" json:"resolved_by_job_card_id,omitempty"`
	CreatedAt          time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (WatchListItem) TableName() string { return "watch_list_items" }
