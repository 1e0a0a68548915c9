package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/haulmatic/fleetguard/internal/activity/domain"
	"github.com/haulmatic/fleetguard/internal/clock"
	"github.com/haulmatic/fleetguard/internal/status"
	vehicledomain "github.com/haulmatic/fleetguard/internal/vehicle/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        vehicledomain.Repository
	ActivitySvc activitydomain.Service
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        vehicledomain.Repository
	activitySvc activitydomain.Service
}

func NewService(p Params) vehicledomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("vehicle.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		activitySvc: p.ActivitySvc,
	}
}

func (s *Service) CreateMachineType(ctx context.Context, req vehicledomain.CreateMachineTypeRequest) (vehicledomain.MachineType, error) {
	if strings.TrimSpace(req.Name) == "" {
		return vehicledomain.MachineType{}, vehicledomain.ErrInvalidVehicle
	}
	switch req.TrackingUnit {
	case vehicledomain.TrackingHours, vehicledomain.TrackingKilometers:
	default:
		return vehicledomain.MachineType{}, vehicledomain.ErrInvalidTrackingUnit
	}
	if req.MinorServiceInterval <= 0 || req.MajorServiceInterval <= req.MinorServiceInterval {
		return vehicledomain.MachineType{}, vehicledomain.ErrInvalidIntervals
	}
	if req.WarningThreshold < 0 || req.WarningThreshold >= req.MinorServiceInterval {
		return vehicledomain.MachineType{}, vehicledomain.ErrInvalidIntervals
	}

	now := s.clock.Now()
	mt := vehicledomain.MachineType{
		ID:                   s.genID.Generate(),
		Name:                 strings.TrimSpace(req.Name),
		TrackingUnit:         req.TrackingUnit,
		MinorServiceInterval: req.MinorServiceInterval,
		MajorServiceInterval: req.MajorServiceInterval,
		WarningThreshold:     req.WarningThreshold,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.repo.InsertMachineType(ctx, s.db, &mt); err != nil {
		return vehicledomain.MachineType{}, err
	}
	return mt, nil
}

func (s *Service) GetVehicle(ctx context.Context, id string) (vehicledomain.Vehicle, error) {
	vehicleID, err := s.parseID(id, vehicledomain.ErrInvalidVehicle)
	if err != nil {
		return vehicledomain.Vehicle{}, err
	}
	vehicle, err := s.repo.FindVehicleByID(ctx, s.db, vehicleID)
	if err != nil {
		return vehicledomain.Vehicle{}, err
	}
	if vehicle == nil {
		return vehicledomain.Vehicle{}, vehicledomain.ErrVehicleNotFound
	}
	return *vehicle, nil
}

func (s *Service) CreateReading(ctx context.Context, req vehicledomain.CreateReadingRequest) (vehicledomain.Reading, error) {
	vehicleID, err := s.parseID(req.VehicleID, vehicledomain.ErrInvalidVehicle)
	if err != nil {
		return vehicledomain.Reading{}, err
	}
	recordedBy, err := s.parseID(req.RecordedBy, vehicledomain.ErrInvalidReading)
	if err != nil {
		return vehicledomain.Reading{}, err
	}
	if req.Hours == nil && req.Kilometers == nil {
		return vehicledomain.Reading{}, vehicledomain.ErrInvalidReading
	}
	if (req.Hours != nil && *req.Hours < 0) || (req.Kilometers != nil && *req.Kilometers < 0) {
		return vehicledomain.Reading{}, vehicledomain.ErrInvalidReading
	}

	now := s.clock.Now()
	reading := vehicledomain.Reading{
		ID:         s.genID.Generate(),
		VehicleID:  vehicleID,
		Hours:      req.Hours,
		Kilometers: req.Kilometers,
		RecordedBy: recordedBy,
		RecordedAt: now,
		CreatedAt:  now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		vehicle, err := s.repo.FindVehicleByIDForUpdate(ctx, tx, vehicleID)
		if err != nil {
			return err
		}
		if vehicle == nil {
			return vehicledomain.ErrVehicleNotFound
		}
		// Meters only move forward.
		if req.Hours != nil && vehicle.CurrentHours != nil && *req.Hours < *vehicle.CurrentHours {
			return vehicledomain.ErrReadingRegressed
		}
		if req.Kilometers != nil && vehicle.CurrentKM != nil && *req.Kilometers < *vehicle.CurrentKM {
			return vehicledomain.ErrReadingRegressed
		}

		if err := s.repo.InsertReading(ctx, tx, &reading); err != nil {
			return err
		}
		return s.repo.UpdateCurrentReading(ctx, tx, vehicleID, req.Hours, req.Kilometers, now)
	})
	if err != nil {
		return vehicledomain.Reading{}, err
	}

	_ = s.activitySvc.Record(ctx, activitydomain.Entry{
		Action:     "reading.created",
		TargetType: "reading",
		TargetID:   reading.ID.String(),
		VehicleID:  vehicleID,
	})
	return reading, nil
}

func (s *Service) ServiceDue(ctx context.Context, vehicleID string) (vehicledomain.ServiceDueResponse, error) {
	vehicle, err := s.GetVehicle(ctx, vehicleID)
	if err != nil {
		return vehicledomain.ServiceDueResponse{}, err
	}
	mt, err := s.repo.FindMachineTypeByID(ctx, s.db, vehicle.MachineTypeID)
	if err != nil {
		return vehicledomain.ServiceDueResponse{}, err
	}
	if mt == nil {
		return vehicledomain.ServiceDueResponse{}, vehicledomain.ErrMachineTypeNotFound
	}

	due := status.ServiceDue(
		status.Intervals{
			Minor:            mt.MinorServiceInterval,
			Major:            mt.MajorServiceInterval,
			WarningThreshold: mt.WarningThreshold,
		},
		vehicle.CurrentReading(mt.TrackingUnit),
		vehicle.LastMinorServiceReading,
		vehicle.LastMajorServiceReading,
	)

	return vehicledomain.ServiceDueResponse{
		VehicleID:    vehicle.ID.String(),
		TrackingUnit: mt.TrackingUnit,
		Due:          due,
	}, nil
}

func (s *Service) parseID(raw string, invalid error) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, invalid
	}
	return id, nil
}
