package domain

import (
	"context"
	"errors"
)

type CreateJobCardRequest struct {
	VehicleID   string  `json:"vehicle_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Cost        float64 `json:"cost"`
	CreatedBy   string  `json:"created_by"`
}

// ApproveResult carries the approved card and how many watch-list items
// the approval resolved.
type ApproveResult struct {
	JobCard       JobCard `json:"job_card"`
	ItemsResolved int     `json:"items_resolved"`
}

type Service interface {
	Create(ctx context.Context, req CreateJobCardRequest) (JobCard, error)
	Get(ctx context.Context, id string) (JobCard, error)
	ListByVehicle(ctx context.Context, vehicleID string) ([]JobCard, error)
	Submit(ctx context.Context, id, actorID string) (JobCard, error)
	// Approve transitions pending → approved and, in the same transaction,
	// resolves the listed watch-list items. Items that are not active or
	// belong to another vehicle are skipped, not errors.
	Approve(ctx context.Context, id, actorID string, watchListItemIDs []string) (ApproveResult, error)
	Reject(ctx context.Context, id, actorID, reason string) (JobCard, error)
}

var (
	ErrJobCardNotFound  = errors.New("job_card_not_found")
	ErrInvalidJobCard   = errors.New("invalid_job_card")
	ErrInvalidVehicleID = errors.New("invalid_vehicle_id")
)
