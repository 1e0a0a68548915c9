// Package domain contains the vehicle service record model.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/haulmatic/fleetguard/internal/workflow"
)

type ServiceType string

const (
	ServiceTypeMinor ServiceType = "minor"
	ServiceTypeMajor ServiceType = "major"
)

// ServiceRecord is one performed service, subject to the approval
// workflow. Approval rolls the vehicle's last-service markers forward; a
// major service satisfies the minor interval too.
type ServiceRecord struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	VehicleID   snowflake.ID `gorm:"not null;index" json:"vehicle_id"`
	ServiceType ServiceType  `gorm:"type:text;not null" json:"service_type"`
	ServiceDate time.Time    `gorm:"not null" json:"service_date"`
	// Reading is the meter value at service time, in the machine type's
	// tracking unit.
	Reading     float64 `gorm:"not null" json:"reading"`
	Description string  `gorm:"type:text" json:"description"`
	Cost        float64 `gorm:"not null;default:0" json:"cost"`

	workflow.Record `gorm:"embedded"`

	CreatedBy snowflake.ID `gorm:"not null" json:"created_by"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (ServiceRecord) TableName() string { return "service_records" }
