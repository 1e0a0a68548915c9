package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	taxdomain "github.com/haulmatic/fleetguard/internal/tax/domain"
	"gorm.io/gorm"
)

type repo struct{}

func NewRepository() taxdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, period *taxdomain.TaxPeriod) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO tax_periods (
			id, vehicle_id, start_date, end_date, amount_paid, status,
			penalty_incurred, created_by, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		period.ID,
		period.VehicleID,
		period.StartDate,
		period.EndDate,
		period.AmountPaid,
		period.Status,
		period.PenaltyIncurred,
		period.CreatedBy,
		period.CreatedAt,
		period.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*taxdomain.TaxPeriod, error) {
	var period taxdomain.TaxPeriod
	err := db.WithContext(ctx).Raw(
		`SELECT id, vehicle_id, start_date, end_date, amount_paid, status,
		        penalty_incurred, created_by, created_at, updated_at
		 FROM tax_periods WHERE id = ?`,
		id,
	).Scan(&period).Error
	if err != nil {
		return nil, err
	}
	if period.ID == 0 {
		return nil, nil
	}
	return &period, nil
}

func (r *repo) FindByVehicle(ctx context.Context, db *gorm.DB, vehicleID snowflake.ID) ([]taxdomain.TaxPeriod, error) {
	var periods []taxdomain.TaxPeriod
	err := db.WithContext(ctx).Raw(
		`SELECT id, vehicle_id, start_date, end_date, amount_paid, status,
		        penalty_incurred, created_by, created_at, updated_at
		 FROM tax_periods WHERE vehicle_id = ?
		 ORDER BY end_date DESC`,
		vehicleID,
	).Scan(&periods).Error
	return periods, err
}

func (r *repo) FindLatestByVehicle(ctx context.Context, db *gorm.DB, vehicleID snowflake.ID) (*taxdomain.TaxPeriod, error) {
	var period taxdomain.TaxPeriod
	err := db.WithContext(ctx).Raw(
		`SELECT id, vehicle_id, start_date, end_date, amount_paid, status,
		        penalty_incurred, created_by, created_at, updated_at
		 FROM tax_periods
		 WHERE vehicle_id = ? AND status = ?
		 ORDER BY end_date DESC
		 LIMIT 1`,
		vehicleID,
		taxdomain.PeriodStatusActive,
	).Scan(&period).Error
	if err != nil {
		return nil, err
	}
	if period.ID == 0 {
		return nil, nil
	}
	return &period, nil
}

func (r *repo) FindLatestForVehicles(ctx context.Context, db *gorm.DB, vehicleIDs []snowflake.ID) (map[snowflake.ID]taxdomain.TaxPeriod, error) {
	out := make(map[snowflake.ID]taxdomain.TaxPeriod, len(vehicleIDs))
	if len(vehicleIDs) == 0 {
		return out, nil
	}

	var periods []taxdomain.TaxPeriod
	err := db.WithContext(ctx).Raw(
		`SELECT id, vehicle_id, start_date, end_date, amount_paid, status,
		        penalty_incurred, created_by, created_at, updated_at
		 FROM tax_periods
		 WHERE vehicle_id IN ? AND status = ?
		 ORDER BY end_date ASC`,
		vehicleIDs,
		taxdomain.PeriodStatusActive,
	).Scan(&periods).Error
	if err != nil {
		return nil, err
	}
	// Ascending order means the last row per vehicle wins.
	for _, p := range periods {
		out[p.VehicleID] = p
	}
	return out, nil
}
