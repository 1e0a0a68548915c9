package domain

import (
	"context"
	"errors"
	"time"
)

type ResultInput struct {
	ItemName string `json:"item_name"`
	Rating   Rating `json:"rating"`
	Notes    string `json:"notes"`
}

type CreateInspectionRequest struct {
	VehicleID      string        `json:"vehicle_id"`
	InspectionDate time.Time     `json:"inspection_date"`
	Notes          string        `json:"notes"`
	Results        []ResultInput `json:"results"`
	CreatedBy      string        `json:"created_by"`
}

type Service interface {
	Create(ctx context.Context, req CreateInspectionRequest) (Inspection, error)
	Get(ctx context.Context, id string) (Inspection, error)
	ListByVehicle(ctx context.Context, vehicleID string) ([]Inspection, error)
	Submit(ctx context.Context, id, actorID string) (Inspection, error)
	// Approve transitions pending → approved and, in the same transaction,
	// creates one watch-list item per service/repair-rated result.
	Approve(ctx context.Context, id, actorID string) (Inspection, error)
	Reject(ctx context.Context, id, actorID, reason string) (Inspection, error)
}

var (
	ErrInspectionNotFound = errors.New("inspection_not_found")
	ErrInvalidInspection  = errors.New("invalid_inspection")
	ErrInvalidRating      = errors.New("invalid_rating")
	ErrInvalidVehicleID   = errors.New("invalid_vehicle_id")
)
