// Package domain contains the road tax period model.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/haulmatic/fleetguard/internal/status"
)

type PeriodStatus string

const (
	PeriodStatusActive    PeriodStatus = "active"
	PeriodStatusCancelled PeriodStatus = "cancelled"
)

// TaxPeriod is one paid road tax window. penalty_incurred is fixed at
// creation from the gap since the previous period; the compliance state is
// derived from end_date on every read, never stored.
type TaxPeriod struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	VehicleID       snowflake.ID `gorm:"not null;index" json:"vehicle_id"`
	StartDate       time.Time    `gorm:"not null" json:"start_date"`
	EndDate         time.Time    `gorm:"not null;index" json:"end_date"`
	AmountPaid      float64      `gorm:"not null" json:"amount_paid"`
	Status          PeriodStatus `gorm:"type:text;not null;default:active" json:"status"`
	PenaltyIncurred bool         `gorm:"not null;default:false" json:"penalty_incurred"`
	CreatedBy       snowflake.ID `gorm:"not null" json:"created_by"`
	CreatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (TaxPeriod) TableName() string { return "tax_periods" }

// View is a TaxPeriod with its derived compliance state attached.
type View struct {
	TaxPeriod
	TaxStatus     status.TaxState `json:"tax_status"`
	DaysRemaining int             `json:"days_remaining"`
}
