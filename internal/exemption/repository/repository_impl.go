package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	exemptiondomain "github.com/haulmatic/fleetguard/internal/exemption/domain"
	"gorm.io/gorm"
)

const selectColumns = `id, vehicle_id, reason, start_date, end_date, status,
	ended_at, created_by, created_at, updated_at`

type repo struct{}

func NewRepository() exemptiondomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, exemption *exemptiondomain.Exemption) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO vehicle_exemptions (
			id, vehicle_id, reason, start_date, end_date, status,
			ended_at, created_by, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		exemption.ID,
		exemption.VehicleID,
		exemption.Reason,
		exemption.StartDate,
		exemption.EndDate,
		exemption.Status,
		exemption.EndedAt,
		exemption.CreatedBy,
		exemption.CreatedAt,
		exemption.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*exemptiondomain.Exemption, error) {
	var exemption exemptiondomain.Exemption
	err := db.WithContext(ctx).Raw(
		`SELECT `+selectColumns+` FROM vehicle_exemptions WHERE id = ?`,
		id,
	).Scan(&exemption).Error
	if err != nil {
		return nil, err
	}
	if exemption.ID == 0 {
		return nil, nil
	}
	return &exemption, nil
}

func (r *repo) FindByVehicle(ctx context.Context, db *gorm.DB, vehicleID snowflake.ID) ([]exemptiondomain.Exemption, error) {
	var exemptions []exemptiondomain.Exemption
	err := db.WithContext(ctx).Raw(
		`SELECT `+selectColumns+` FROM vehicle_exemptions
		 WHERE vehicle_id = ?
		 ORDER BY end_date DESC`,
		vehicleID,
	).Scan(&exemptions).Error
	return exemptions, err
}

func (r *repo) FindActiveByVehicle(ctx context.Context, db *gorm.DB, vehicleID snowflake.ID) (*exemptiondomain.Exemption, error) {
	var exemption exemptiondomain.Exemption
	err := db.WithContext(ctx).Raw(
		`SELECT `+selectColumns+` FROM vehicle_exemptions
		 WHERE vehicle_id = ? AND status = ?
		 LIMIT 1`,
		vehicleID,
		exemptiondomain.StatusActive,
	).Scan(&exemption).Error
	if err != nil {
		return nil, err
	}
	if exemption.ID == 0 {
		return nil, nil
	}
	return &exemption, nil
}

func (r *repo) FindActive(ctx context.Context, db *gorm.DB, vehicleID snowflake.ID) ([]exemptiondomain.Exemption, error) {
	query := `SELECT ` + selectColumns + ` FROM vehicle_exemptions WHERE status = ?`
	args := []any{exemptiondomain.StatusActive}
	if vehicleID != 0 {
		query += ` AND vehicle_id = ?`
		args = append(args, vehicleID)
	}
	query += ` ORDER BY end_date ASC`

	var exemptions []exemptiondomain.Exemption
	err := db.WithContext(ctx).Raw(query, args...).Scan(&exemptions).Error
	return exemptions, err
}

func (r *repo) FindExpiredActive(ctx context.Context, db *gorm.DB, today time.Time) ([]exemptiondomain.Exemption, error) {
	var exemptions []exemptiondomain.Exemption
	err := db.WithContext(ctx).Raw(
		`SELECT `+selectColumns+` FROM vehicle_exemptions
		 WHERE status = ? AND end_date < ?
		 ORDER BY end_date ASC`,
		exemptiondomain.StatusActive,
		today,
	).Scan(&exemptions).Error
	return exemptions, err
}

func (r *repo) CloseOut(ctx context.Context, db *gorm.DB, id snowflake.ID, status exemptiondomain.ExemptionStatus, endedAt, updatedAt time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE vehicle_exemptions
		 SET status = ?, ended_at = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		status,
		endedAt,
		updatedAt,
		id,
		exemptiondomain.StatusActive,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
