// Package domain contains the job card model.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/haulmatic/fleetguard/internal/workflow"
)

// JobCard is a unit of repair work, subject to the approval workflow.
// Approval may batch-resolve the watch-list items it addresses.
type JobCard struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	VehicleID   snowflake.ID `gorm:"not null;index" json:"vehicle_id"`
	Title       string       `gorm:"type:text;not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	Cost        float64      `gorm:"not null;default:0" json:"cost"`

	workflow.Record `gorm:"embedded"`

	CreatedBy snowflake.ID `gorm:"not null" json:"created_by"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (JobCard) TableName() string { return "job_cards" }
