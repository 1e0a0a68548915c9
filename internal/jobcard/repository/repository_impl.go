package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	jobcarddomain "github.com/haulmatic/fleetguard/internal/jobcard/domain"
	"github.com/haulmatic/fleetguard/internal/workflow"
	"gorm.io/gorm"
)

const selectColumns = `id, vehicle_id, title, description, cost, status,
	submitted_by, submitted_at, approved_by, approved_at, rejection_reason,
	previous_submission_id, created_by, created_at, updated_at`

type repo struct{}

func NewRepository() jobcarddomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, card *jobcarddomain.JobCard) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO job_cards (
			id, vehicle_id, title, description, cost, status, created_by,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		card.ID,
		card.VehicleID,
		card.Title,
		card.Description,
		card.Cost,
		card.Status,
		card.CreatedBy,
		card.CreatedAt,
		card.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*jobcarddomain.JobCard, error) {
	var card jobcarddomain.JobCard
	err := db.WithContext(ctx).Raw(
		`SELECT `+selectColumns+` FROM job_cards WHERE id = ?`,
		id,
	).Scan(&card).Error
	if err != nil {
		return nil, err
	}
	if card.ID == 0 {
		return nil, nil
	}
	return &card, nil
}

func (r *repo) FindByVehicle(ctx context.Context, db *gorm.DB, vehicleID snowflake.ID) ([]jobcarddomain.JobCard, error) {
	var cards []jobcarddomain.JobCard
	err := db.WithContext(ctx).Raw(
		`SELECT `+selectColumns+` FROM job_cards
		 WHERE vehicle_id = ?
		 ORDER BY created_at DESC`,
		vehicleID,
	).Scan(&cards).Error
	return cards, err
}

func (r *repo) UpdateWorkflow(ctx context.Context, db *gorm.DB, card *jobcarddomain.JobCard, from workflow.State, updatedAt time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE job_cards
		 SET status = ?, submitted_by = ?, submitted_at = ?, approved_by = ?,
		     approved_at = ?, rejection_reason = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		card.Status,
		card.SubmittedBy,
		card.SubmittedAt,
		card.ApprovedBy,
		card.ApprovedAt,
		card.RejectionReason,
		updatedAt,
		card.ID,
		from,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
