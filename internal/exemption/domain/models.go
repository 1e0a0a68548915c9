// Package domain contains the vehicle exemption model. An exemption
// suspends a vehicle's tax obligation for a bounded window.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type ExemptionStatus string

const (
	StatusActive    ExemptionStatus = "active"
	StatusEnded     ExemptionStatus = "ended"
	StatusCancelled ExemptionStatus = "cancelled"
)

type Exemption struct {
	ID        snowflake.ID    `gorm:"primaryKey" json:"id"`
	VehicleID snowflake.ID    `gorm:"not null;index" json:"vehicle_id"`
	Reason    string          `gorm:"type:text;not null" json:"reason"`
	StartDate time.Time       `gorm:"not null" json:"start_date"`
	EndDate   time.Time       `gorm:"not null;index" json:"end_date"`
	Status    ExemptionStatus `gorm:"type:text;not null;default:active" json:"status"`
	// EndedAt is backdated to end_date when the sweep closes an expired
	// exemption, so downstream reports see the real expiry instant.
	EndedAt   *time.Time   `json:"ended_at,omitempty"`
	CreatedBy snowflake.ID `gorm:"not null" json:"created_by"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Exemption) TableName() string { return "vehicle_exemptions" }

// View is an Exemption with derived fields attached.
type View struct {
	Exemption
	IsActive      bool `json:"is_active"`
	DaysRemaining int  `json:"days_remaining"`
}
