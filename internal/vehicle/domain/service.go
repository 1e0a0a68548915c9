package domain

import (
	"context"
	"errors"

	"github.com/haulmatic/fleetguard/internal/status"
)

type CreateMachineTypeRequest struct {
	Name                 string       `json:"name"`
	TrackingUnit         TrackingUnit `json:"tracking_unit"`
	MinorServiceInterval float64      `json:"minor_service_interval"`
	MajorServiceInterval float64      `json:"major_service_interval"`
	WarningThreshold     float64      `json:"warning_threshold"`
}

type CreateReadingRequest struct {
	VehicleID  string   `json:"vehicle_id"`
	Hours      *float64 `json:"hours,omitempty"`
	Kilometers *float64 `json:"kilometers,omitempty"`
	RecordedBy string   `json:"recorded_by"`
}

type ServiceDueResponse struct {
	VehicleID    string                  `json:"vehicle_id"`
	TrackingUnit TrackingUnit            `json:"tracking_unit"`
	Due          status.ServiceDueStatus `json:"due"`
}

type Service interface {
	CreateMachineType(ctx context.Context, req CreateMachineTypeRequest) (MachineType, error)
	GetVehicle(ctx context.Context, id string) (Vehicle, error)
	// CreateReading stores the reading and rolls the vehicle's current
	// usage and last_reading_at forward in the same transaction.
	CreateReading(ctx context.Context, req CreateReadingRequest) (Reading, error)
	// ServiceDue derives the vehicle's service-due state from its machine
	// type intervals and last-service markers.
	ServiceDue(ctx context.Context, vehicleID string) (ServiceDueResponse, error)
}

var (
	ErrVehicleNotFound     = errors.New("vehicle_not_found")
	ErrMachineTypeNotFound = errors.New("machine_type_not_found")
	ErrInvalidVehicle      = errors.New("invalid_vehicle")
	ErrInvalidReading      = errors.New("invalid_reading")
	ErrReadingRegressed    = errors.New("reading_below_current")
	ErrInvalidIntervals    = errors.New("invalid_service_intervals")
	ErrInvalidTrackingUnit = errors.New("invalid_tracking_unit")
)
