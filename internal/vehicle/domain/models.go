// Package domain contains persistence models for vehicles, machine types
// and usage readings.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// TrackingUnit is the unit a machine type accrues usage in.
type TrackingUnit string

const (
	TrackingHours      TrackingUnit = "hours"
	TrackingKilometers TrackingUnit = "kilometers"
)

// MachineType defines the service intervals for a class of machines, all in
// the tracking unit.
type MachineType struct {
	ID                   snowflake.ID `gorm:"primaryKey" json:"id"`
	Name                 string       `gorm:"type:text;not null" json:"name"`
	TrackingUnit         TrackingUnit `gorm:"type:text;not null" json:"tracking_unit"`
	MinorServiceInterval float64      `gorm:"not null" json:"minor_service_interval"`
	MajorServiceInterval float64      `gorm:"not null" json:"major_service_interval"`
	WarningThreshold     float64      `gorm:"not null" json:"warning_threshold"`
	CreatedAt            time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt            time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (MachineType) TableName() string { return "machine_types" }

type VehicleStatus string

const (
	VehicleStatusActive   VehicleStatus = "active"
	VehicleStatusDisposed VehicleStatus = "disposed"
)

// Vehicle carries the fleet-tracking state mutated by reading creation
// (current_*) and service approval (last_*_service_*).
type Vehicle struct {
	ID             snowflake.ID  `gorm:"primaryKey" json:"id"`
	MachineTypeID  snowflake.ID  `gorm:"not null;index" json:"machine_type_id"`
	RegistrationNo string        `gorm:"type:text;not null;uniqueIndex" json:"registration_no"`
	Status         VehicleStatus `gorm:"type:text;not null;default:active" json:"status"`

	CurrentHours  *float64   `json:"current_hours,omitempty"`
	CurrentKM     *float64   `json:"current_km,omitempty"`
	LastReadingAt *time.Time `json:"last_reading_at,omitempty"`

	LastMinorServiceReading float64    `gorm:"not null;default:0" json:"last_minor_service_reading"`
	LastMajorServiceReading float64    `gorm:"not null;default:0" json:"last_major_service_reading"`
	LastMinorServiceDate    *time.Time `json:"last_minor_service_date,omitempty"`
	LastMajorServiceDate    *time.Time `json:"last_major_service_date,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Vehicle) TableName() string { return "vehicles" }

// CurrentReading returns the vehicle's usage in the given tracking unit,
// or nil when no reading has been recorded yet.
func (v Vehicle) CurrentReading(unit TrackingUnit) *float64 {
	if unit == TrackingKilometers {
		return v.CurrentKM
	}
	return v.CurrentHours
}

// Reading is one reported odometer/hour-meter value.
type Reading struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	VehicleID  snowflake.ID `gorm:"not null;index" json:"vehicle_id"`
	Hours      *float64     `json:"hours,omitempty"`
	Kilometers *float64     `json:"kilometers,omitempty"`
	RecordedBy snowflake.ID `gorm:"not null" json:"recorded_by"`
	RecordedAt time.Time    `gorm:"not null" json:"recorded_at"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Reading) TableName() string { return "readings" }
