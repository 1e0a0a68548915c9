package domain

import (
	"context"
	"errors"
	"time"
)

type CreateServiceRecordRequest struct {
	VehicleID   string      `json:"vehicle_id"`
	ServiceType ServiceType `json:"service_type"`
	ServiceDate time.Time   `json:"service_date"`
	Reading     float64     `json:"reading"`
	Description string      `json:"description"`
	Cost        float64     `json:"cost"`
	CreatedBy   string      `json:"created_by"`
}

type UpdateServiceRecordRequest struct {
	ServiceDate *time.Time `json:"service_date,omitempty"`
	Reading     *float64   `json:"reading,omitempty"`
	Description *string    `json:"description,omitempty"`
	Cost        *float64   `json:"cost,omitempty"`
}

type Service interface {
	Create(ctx context.Context, req CreateServiceRecordRequest) (ServiceRecord, error)
	Get(ctx context.Context, id string) (ServiceRecord, error)
	ListByVehicle(ctx context.Context, vehicleID string) ([]ServiceRecord, error)
	// Update is allowed only while the record can still be edited (draft
	// or rejected).
	Update(ctx context.Context, id string, req UpdateServiceRecordRequest) (ServiceRecord, error)
	Submit(ctx context.Context, id, actorID string) (ServiceRecord, error)
	// Approve transitions pending → approved and, in the same transaction,
	// rolls the vehicle's last-service markers to this record's
	// reading/date. Major service resets the minor markers as well.
	Approve(ctx context.Context, id, actorID string) (ServiceRecord, error)
	Reject(ctx context.Context, id, actorID, reason string) (ServiceRecord, error)
	// DeleteDraft removes a record that was never submitted.
	DeleteDraft(ctx context.Context, id string) error
}

var (
	ErrRecordNotFound     = errors.New("service_record_not_found")
	ErrInvalidRecord      = errors.New("invalid_service_record")
	ErrRecordNotEditable  = errors.New("service_record_not_editable")
	ErrInvalidServiceType = errors.New("invalid_service_type")
	ErrInvalidVehicleID   = errors.New("invalid_vehicle_id")
)
