package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	inspectiondomain "github.com/haulmatic/fleetguard/internal/inspection/domain"
	"github.com/haulmatic/fleetguard/internal/workflow"
	"gorm.io/gorm"
)

const selectColumns = `id, vehicle_id, inspection_date, notes, status,
	submitted_by, submitted_at, approved_by, approved_at, rejection_reason,
	previous_submission_id, created_by, created_at, updated_at`

type repo struct{}

func NewRepository() inspectiondomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, inspection *inspectiondomain.Inspection) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO inspections (
			id, vehicle_id, inspection_date, notes, status, created_by,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		inspection.ID,
		inspection.VehicleID,
		inspection.InspectionDate,
		inspection.Notes,
		inspection.Status,
		inspection.CreatedBy,
		inspection.CreatedAt,
		inspection.UpdatedAt,
	).Error
}

func (r *repo) InsertResults(ctx context.Context, db *gorm.DB, results []inspectiondomain.InspectionResult) error {
	for i := range results {
		err := db.WithContext(ctx).Exec(
			`INSERT INTO inspection_results (
				id, inspection_id, item_name, rating, notes, created_at
			) VALUES (?, ?, ?, ?, ?, ?)`,
			results[i].ID,
			results[i].InspectionID,
			results[i].ItemName,
			results[i].Rating,
			results[i].Notes,
			results[i].CreatedAt,
		).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*inspectiondomain.Inspection, error) {
	var inspection inspectiondomain.Inspection
	err := db.WithContext(ctx).Raw(
		`SELECT `+selectColumns+` FROM inspections WHERE id = ?`,
		id,
	).Scan(&inspection).Error
	if err != nil {
		return nil, err
	}
	if inspection.ID == 0 {
		return nil, nil
	}
	return &inspection, nil
}

func (r *repo) FindResults(ctx context.Context, db *gorm.DB, inspectionID snowflake.ID) ([]inspectiondomain.InspectionResult, error) {
	var results []inspectiondomain.InspectionResult
	err := db.WithContext(ctx).Raw(
		`SELECT id, inspection_id, item_name, rating, notes, created_at
		 FROM inspection_results
		 WHERE inspection_id = ?
		 ORDER BY id ASC`,
		inspectionID,
	).Scan(&results).Error
	return results, err
}

func (r *repo) FindByVehicle(ctx context.Context, db *gorm.DB, vehicleID snowflake.ID) ([]inspectiondomain.Inspection, error) {
	var inspections []inspectiondomain.Inspection
	err := db.WithContext(ctx).Raw(
		`SELECT `+selectColumns+` FROM inspections
		 WHERE vehicle_id = ?
		 ORDER BY inspection_date DESC`,
		vehicleID,
	).Scan(&inspections).Error
	return inspections, err
}

func (r *repo) UpdateWorkflow(ctx context.Context, db *gorm.DB, inspection *inspectiondomain.Inspection, from workflow.State, updatedAt time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE inspections
		 SET status = ?, submitted_by = ?, submitted_at = ?, approved_by = ?,
		     approved_at = ?, rejection_reason = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		inspection.Status,
		inspection.SubmittedBy,
		inspection.SubmittedAt,
		inspection.ApprovedBy,
		inspection.ApprovedAt,
		inspection.RejectionReason,
		updatedAt,
		inspection.ID,
		from,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
