package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, exemption *Exemption) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Exemption, error)
	FindByVehicle(ctx context.Context, db *gorm.DB, vehicleID snowflake.ID) ([]Exemption, error)
	FindActiveByVehicle(ctx context.Context, db *gorm.DB, vehicleID snowflake.ID) (*Exemption, error)
	// FindActive returns every active exemption, optionally scoped to one
	// vehicle (zero means all).
	FindActive(ctx context.Context, db *gorm.DB, vehicleID snowflake.ID) ([]Exemption, error)
	// FindExpiredActive returns active exemptions whose end_date is strictly
	// before today.
	FindExpiredActive(ctx context.Context, db *gorm.DB, today time.Time) ([]Exemption, error)
	// CloseOut transitions active → status with the given ended_at. The
	// conditional status check makes the sweep safe to re-run.
	CloseOut(ctx context.Context, db *gorm.DB, id snowflake.ID, status ExemptionStatus, endedAt, updatedAt time.Time) (bool, error)
}
