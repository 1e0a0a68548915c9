package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertBatch(ctx context.Context, db *gorm.DB, items []WatchListItem) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*WatchListItem, error)
	FindActiveByVehicle(ctx context.Context, db *gorm.DB, vehicleID snowflake.ID) ([]WatchListItem, error)
	// MarkResolved is conditional on the item still being active.
	MarkResolved(ctx context.Context, db *gorm.DB, id snowflake.ID, jobCardID *snowflake.ID, at time.Time) (bool, error)
	MarkDisposedByVehicle(ctx context.Context, db *gorm.DB, vehicleID snowflake.ID, at time.Time) (int64, error)
	ListComponents(ctx context.Context, db *gorm.DB) ([]Component, error)
}
