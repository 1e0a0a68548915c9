package domain

import (
	"context"
	"errors"
	"time"
)

type CreatePeriodRequest struct {
	VehicleID  string    `json:"vehicle_id"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	AmountPaid float64   `json:"amount_paid"`
	CreatedBy  string    `json:"created_by"`
}

type Service interface {
	// CreatePeriod records a paid period. penalty_incurred is set when the
	// gap since the previous period's end exceeds the configured threshold.
	CreatePeriod(ctx context.Context, req CreatePeriodRequest) (View, error)
	GetPeriod(ctx context.Context, id string) (View, error)
	ListPeriods(ctx context.Context, vehicleID string) ([]View, error)
	// CurrentPeriod returns the active period with the latest end_date, or
	// ErrPeriodNotFound when the vehicle has none.
	CurrentPeriod(ctx context.Context, vehicleID string) (View, error)
}

var (
	ErrPeriodNotFound   = errors.New("tax_period_not_found")
	ErrInvalidPeriod    = errors.New("invalid_tax_period")
	ErrPeriodOverlap    = errors.New("tax_period_overlaps_existing")
	ErrInvalidVehicleID = errors.New("invalid_vehicle_id")
)
