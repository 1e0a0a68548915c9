package domain

import (
	"context"
	"errors"
	"time"
)

type CreateExemptionRequest struct {
	VehicleID string    `json:"vehicle_id"`
	Reason    string    `json:"reason"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	CreatedBy string    `json:"created_by"`
}

type Service interface {
	// Create rejects the request when the vehicle already has an active
	// exemption. One active exemption per vehicle at a time.
	Create(ctx context.Context, req CreateExemptionRequest) (View, error)
	Get(ctx context.Context, id string) (View, error)
	ListByVehicle(ctx context.Context, vehicleID string) ([]View, error)
	// End closes an active exemption early, ended_at = now.
	End(ctx context.Context, id string) (View, error)
	// Cancel voids an active exemption that was created in error.
	Cancel(ctx context.Context, id string) (View, error)
}

var (
	ErrExemptionNotFound  = errors.New("exemption_not_found")
	ErrInvalidExemption   = errors.New("invalid_exemption")
	ErrExemptionNotActive = errors.New("exemption_not_active")
	ErrActiveExists       = errors.New("active_exemption_exists")
	ErrInvalidVehicleID   = errors.New("invalid_vehicle_id")
)
