package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	vehicledomain "github.com/haulmatic/fleetguard/internal/vehicle/domain"
	"gorm.io/gorm"
)

type repo struct{}

func NewRepository() vehicledomain.Repository {
	return &repo{}
}

func (r *repo) FindVehicleByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*vehicledomain.Vehicle, error) {
	var vehicle vehicledomain.Vehicle
	err := db.WithContext(ctx).Raw(
		`SELECT id, machine_type_id, registration_no, status, current_hours, current_km,
		        last_reading_at, last_minor_service_reading, last_major_service_reading,
		        last_minor_service_date, last_major_service_date, created_at, updated_at
		 FROM vehicles WHERE id = ?`,
		id,
	).Scan(&vehicle).Error
	if err != nil {
		return nil, err
	}
	if vehicle.ID == 0 {
		return nil, nil
	}
	return &vehicle, nil
}

func (r *repo) FindVehicleByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*vehicledomain.Vehicle, error) {
	var vehicle vehicledomain.Vehicle
	err := db.WithContext(ctx).Raw(
		`SELECT id, machine_type_id, registration_no, status, current_hours, current_km,
		        last_reading_at, last_minor_service_reading, last_major_service_reading,
		        last_minor_service_date, last_major_service_date, created_at, updated_at
		 FROM vehicles WHERE id = ? FOR UPDATE`,
		id,
	).Scan(&vehicle).Error
	if err != nil {
		return nil, err
	}
	if vehicle.ID == 0 {
		return nil, nil
	}
	return &vehicle, nil
}

func (r *repo) FindActiveVehicles(ctx context.Context, db *gorm.DB, vehicleID snowflake.ID) ([]vehicledomain.Vehicle, error) {
	query := `SELECT id, machine_type_id, registration_no, status, current_hours, current_km,
	                 last_reading_at, last_minor_service_reading, last_major_service_reading,
	                 last_minor_service_date, last_major_service_date, created_at, updated_at
	          FROM vehicles WHERE status = 'active'`
	args := []any{}
	if vehicleID != 0 {
		query += ` AND id = ?`
		args = append(args, vehicleID)
	}
	query += ` ORDER BY id`

	var vehicles []vehicledomain.Vehicle
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&vehicles).Error; err != nil {
		return nil, err
	}
	return vehicles, nil
}

func (r *repo) FindMachineTypeByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*vehicledomain.MachineType, error) {
	var mt vehicledomain.MachineType
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, tracking_unit, minor_service_interval, major_service_interval,
		        warning_threshold, created_at, updated_at
		 FROM machine_types WHERE id = ?`,
		id,
	).Scan(&mt).Error
	if err != nil {
		return nil, err
	}
	if mt.ID == 0 {
		return nil, nil
	}
	return &mt, nil
}

func (r *repo) InsertMachineType(ctx context.Context, db *gorm.DB, mt *vehicledomain.MachineType) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO machine_types (
			id, name, tracking_unit, minor_service_interval, major_service_interval,
			warning_threshold, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		mt.ID,
		mt.Name,
		mt.TrackingUnit,
		mt.MinorServiceInterval,
		mt.MajorServiceInterval,
		mt.WarningThreshold,
		mt.CreatedAt,
		mt.UpdatedAt,
	).Error
}

func (r *repo) InsertReading(ctx context.Context, db *gorm.DB, reading *vehicledomain.Reading) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO readings (
			id, vehicle_id, hours, kilometers, recorded_by, recorded_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		reading.ID,
		reading.VehicleID,
		reading.Hours,
		reading.Kilometers,
		reading.RecordedBy,
		reading.RecordedAt,
		reading.CreatedAt,
	).Error
}

func (r *repo) UpdateCurrentReading(ctx context.Context, db *gorm.DB, vehicleID snowflake.ID, hours, km *float64, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE vehicles
		 SET current_hours = COALESCE(?, current_hours),
		     current_km = COALESCE(?, current_km),
		     last_reading_at = ?,
		     updated_at = ?
		 WHERE id = ?`,
		hours,
		km,
		at,
		at,
		vehicleID,
	).Error
}

func (r *repo) UpdateServiceMarkers(ctx context.Context, db *gorm.DB, vehicleID snowflake.ID, reading float64, date time.Time, major bool) error {
	if major {
		return db.WithContext(ctx).Exec(
			`UPDATE vehicles
			 SET last_minor_service_reading = ?,
			     last_major_service_reading = ?,
			     last_minor_service_date = ?,
			     last_major_service_date = ?,
			     updated_at = ?
			 WHERE id = ?`,
			reading,
			reading,
			date,
			date,
			date,
			vehicleID,
		).Error
	}
	return db.WithContext(ctx).Exec(
		`UPDATE vehicles
		 SET last_minor_service_reading = ?,
		     last_minor_service_date = ?,
		     updated_at = ?
		 WHERE id = ?`,
		reading,
		date,
		date,
		vehicleID,
	).Error
}
