// Package domain contains the inspection models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/haulmatic/fleetguard/internal/workflow"
)

type Rating string

const (
	RatingOK      Rating = "ok"
	RatingService Rating = "service"
	RatingRepair  Rating = "repair"
	RatingReplace Rating = "replace"
)

// WatchListed reports whether a finding with this rating belongs on the
// watch list. A replaced item resolves itself, nothing to track forward.
func (r Rating) WatchListed() bool {
	return r == RatingService || r == RatingRepair
}

// Inspection is one checklist walk of a vehicle, subject to the approval
// workflow. Approval materializes watch-list items from its findings.
type Inspection struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	VehicleID      snowflake.ID `gorm:"not null;index" json:"vehicle_id"`
	InspectionDate time.Time    `gorm:"not null" json:"inspection_date"`
	Notes          string       `gorm:"type:text" json:"notes"`

	workflow.Record `gorm:"embedded"`

	Results []InspectionResult `gorm:"-" json:"results,omitempty"`

	CreatedBy snowflake.ID `gorm:"not null" json:"created_by"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Inspection) TableName() string { return "inspections" }

// InspectionResult is one checklist line item.
type InspectionResult struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	InspectionID snowflake.ID `gorm:"not null;index" json:"inspection_id"`
	ItemName     string       `gorm:"type:text;not null" json:"item_name"`
	Rating       Rating       `gorm:"type:text;not null" json:"rating"`
	Notes        string       `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (InspectionResult) TableName() string { return "inspection_results" }
