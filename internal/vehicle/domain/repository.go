package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindVehicleByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Vehicle, error)
	FindVehicleByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Vehicle, error)
	// FindActiveVehicles returns the active fleet, optionally scoped to one
	// vehicle (zero means all).
	FindActiveVehicles(ctx context.Context, db *gorm.DB, vehicleID snowflake.ID) ([]Vehicle, error)
	FindMachineTypeByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*MachineType, error)
	InsertMachineType(ctx context.Context, db *gorm.DB, mt *MachineType) error
	InsertReading(ctx context.Context, db *gorm.DB, reading *Reading) error
	UpdateCurrentReading(ctx context.Context, db *gorm.DB, vehicleID snowflake.ID, hours, km *float64, at time.Time) error
	// UpdateServiceMarkers rolls the last-service reading/date markers after
	// a service approval. Minor markers are always set; major markers only
	// when major is true.
	UpdateServiceMarkers(ctx context.Context, db *gorm.DB, vehicleID snowflake.ID, reading float64, date time.Time, major bool) error
}
