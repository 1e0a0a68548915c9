package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, period *TaxPeriod) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*TaxPeriod, error)
	FindByVehicle(ctx context.Context, db *gorm.DB, vehicleID snowflake.ID) ([]TaxPeriod, error)
	// FindLatestByVehicle returns the active period with the greatest
	// end_date, or nil when the vehicle has none.
	FindLatestByVehicle(ctx context.Context, db *gorm.DB, vehicleID snowflake.ID) (*TaxPeriod, error)
	// FindLatestForVehicles returns each listed vehicle's latest active
	// period in one query, keyed by vehicle id.
	FindLatestForVehicles(ctx context.Context, db *gorm.DB, vehicleIDs []snowflake.ID) (map[snowflake.ID]TaxPeriod, error)
}
