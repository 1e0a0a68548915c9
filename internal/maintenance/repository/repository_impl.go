package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	maintenancedomain "github.com/haulmatic/fleetguard/internal/maintenance/domain"
	"github.com/haulmatic/fleetguard/internal/workflow"
	"gorm.io/gorm"
)

const selectColumns = `id, vehicle_id, service_type, service_date, reading,
	description, cost, status, submitted_by, submitted_at, approved_by,
	approved_at, rejection_reason, previous_submission_id, created_by,
	created_at, updated_at`

type repo struct{}

func NewRepository() maintenancedomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, record *maintenancedomain.ServiceRecord) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO service_records (
			id, vehicle_id, service_type, service_date, reading, description,
			cost, status, created_by, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.VehicleID,
		record.ServiceType,
		record.ServiceDate,
		record.Reading,
		record.Description,
		record.Cost,
		record.Status,
		record.CreatedBy,
		record.CreatedAt,
		record.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*maintenancedomain.ServiceRecord, error) {
	var record maintenancedomain.ServiceRecord
	err := db.WithContext(ctx).Raw(
		`SELECT `+selectColumns+` FROM service_records WHERE id = ?`,
		id,
	).Scan(&record).Error
	if err != nil {
		return nil, err
	}
	if record.ID == 0 {
		return nil, nil
	}
	return &record, nil
}

func (r *repo) FindByVehicle(ctx context.Context, db *gorm.DB, vehicleID snowflake.ID) ([]maintenancedomain.ServiceRecord, error) {
	var records []maintenancedomain.ServiceRecord
	err := db.WithContext(ctx).Raw(
		`SELECT `+selectColumns+` FROM service_records
		 WHERE vehicle_id = ?
		 ORDER BY service_date DESC`,
		vehicleID,
	).Scan(&records).Error
	return records, err
}

func (r *repo) UpdateFields(ctx context.Context, db *gorm.DB, record *maintenancedomain.ServiceRecord) error {
	return db.WithContext(ctx).Exec(
		`UPDATE service_records
		 SET service_date = ?, reading = ?, description = ?, cost = ?, updated_at = ?
		 WHERE id = ?`,
		record.ServiceDate,
		record.Reading,
		record.Description,
		record.Cost,
		record.UpdatedAt,
		record.ID,
	).Error
}

func (r *repo) UpdateWorkflow(ctx context.Context, db *gorm.DB, record *maintenancedomain.ServiceRecord, from workflow.State, updatedAt time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE service_records
		 SET status = ?, submitted_by = ?, submitted_at = ?, approved_by = ?,
		     approved_at = ?, rejection_reason = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		record.Status,
		record.SubmittedBy,
		record.SubmittedAt,
		record.ApprovedBy,
		record.ApprovedAt,
		record.RejectionReason,
		updatedAt,
		record.ID,
		from,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) DeleteDraft(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`DELETE FROM service_records WHERE id = ? AND status = ?`,
		id,
		workflow.StateDraft,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
