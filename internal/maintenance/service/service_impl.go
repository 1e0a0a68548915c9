package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/haulmatic/fleetguard/internal/activity/domain"
	"github.com/haulmatic/fleetguard/internal/clock"
	maintenancedomain "github.com/haulmatic/fleetguard/internal/maintenance/domain"
	vehicledomain "github.com/haulmatic/fleetguard/internal/vehicle/domain"
	"github.com/haulmatic/fleetguard/internal/workflow"
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
	Repo        maintenancedomain.Repository
	VehicleRepo vehicledomain.Repository
	ActivitySvc activitydomain.Service
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        maintenancedomain.Repository
	vehicleRepo vehicledomain.Repository
	activitySvc activitydomain.Service
}

func NewService(p Params) maintenancedomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("maintenance.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		vehicleRepo: p.VehicleRepo,
		activitySvc: p.ActivitySvc,
	}
}

func (s *Service) Create(ctx context.Context, req maintenancedomain.CreateServiceRecordRequest) (maintenancedomain.ServiceRecord, error) {
	vehicleID, err := parseID(req.VehicleID, maintenancedomain.ErrInvalidVehicleID)
	if err != nil {
		return maintenancedomain.ServiceRecord{}, err
	}
	createdBy, err := parseID(req.CreatedBy, maintenancedomain.ErrInvalidRecord)
	if err != nil {
		return maintenancedomain.ServiceRecord{}, err
	}
	switch req.ServiceType {
	case maintenancedomain.ServiceTypeMinor, maintenancedomain.ServiceTypeMajor:
	default:
		return maintenancedomain.ServiceRecord{}, maintenancedomain.ErrInvalidServiceType
	}
	if req.ServiceDate.IsZero() || req.Reading < 0 || req.Cost < 0 {
		return maintenancedomain.ServiceRecord{}, maintenancedomain.ErrInvalidRecord
	}

	vehicle, err := s.vehicleRepo.FindVehicleByID(ctx, s.db, vehicleID)
	if err != nil {
		return maintenancedomain.ServiceRecord{}, err
	}
	if vehicle == nil {
		return maintenancedomain.ServiceRecord{}, vehicledomain.ErrVehicleNotFound
	}

	now := s.clock.Now()
	record := maintenancedomain.ServiceRecord{
		ID:          s.genID.Generate(),
		VehicleID:   vehicleID,
		ServiceType: req.ServiceType,
		ServiceDate: req.ServiceDate,
		Reading:     req.Reading,
		Description: strings.TrimSpace(req.Description),
		Cost:        req.Cost,
		Record:      workflow.Record{Status: workflow.StateDraft},
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, s.db, &record); err != nil {
		return maintenancedomain.ServiceRecord{}, err
	}

	_ = s.activitySvc.Record(ctx, activitydomain.Entry{
		Action:     "service_record.created",
		TargetType: "service_record",
		TargetID:   record.ID.String(),
		VehicleID:  vehicleID,
	})
	return record, nil
}

func (s *Service) Get(ctx context.Context, id string) (maintenancedomain.ServiceRecord, error) {
	record, err := s.find(ctx, id)
	if err != nil {
		return maintenancedomain.ServiceRecord{}, err
	}
	return *record, nil
}

func (s *Service) ListByVehicle(ctx context.Context, vehicleID string) ([]maintenancedomain.ServiceRecord, error) {
	id, err := parseID(vehicleID, maintenancedomain.ErrInvalidVehicleID)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByVehicle(ctx, s.db, id)
}

func (s *Service) Update(ctx context.Context, id string, req maintenancedomain.UpdateServiceRecordRequest) (maintenancedomain.ServiceRecord, error) {
	record, err := s.find(ctx, id)
	if err != nil {
		return maintenancedomain.ServiceRecord{}, err
	}
	if !record.CanBeEdited() {
		return maintenancedomain.ServiceRecord{}, maintenancedomain.ErrRecordNotEditable
	}

	if req.ServiceDate != nil {
		record.ServiceDate = *req.ServiceDate
	}
	if req.Reading != nil {
		if *req.Reading < 0 {
			return maintenancedomain.ServiceRecord{}, maintenancedomain.ErrInvalidRecord
		}
		record.Reading = *req.Reading
	}
	if req.Description != nil {
		record.Description = strings.TrimSpace(*req.Description)
	}
	if req.Cost != nil {
		if *req.Cost < 0 {
			return maintenancedomain.ServiceRecord{}, maintenancedomain.ErrInvalidRecord
		}
		record.Cost = *req.Cost
	}
	record.UpdatedAt = s.clock.Now()

	if err := s.repo.UpdateFields(ctx, s.db, record); err != nil {
		return maintenancedomain.ServiceRecord{}, err
	}
	return *record, nil
}

func (s *Service) Submit(ctx context.Context, id, actorID string) (maintenancedomain.ServiceRecord, error) {
	record, err := s.find(ctx, id)
	if err != nil {
		return maintenancedomain.ServiceRecord{}, err
	}
	actor, err := parseID(actorID, maintenancedomain.ErrInvalidRecord)
	if err != nil {
		return maintenancedomain.ServiceRecord{}, err
	}

	now := s.clock.Now()
	from := record.Status
	if from == workflow.StateRejected {
		err = record.Resubmit(actor, now)
	} else {
		err = record.Submit(actor, now)
	}
	if err != nil {
		return maintenancedomain.ServiceRecord{}, err
	}

	ok, err := s.repo.UpdateWorkflow(ctx, s.db, record, from, now)
	if err != nil {
		return maintenancedomain.ServiceRecord{}, err
	}
	if !ok {
		return maintenancedomain.ServiceRecord{}, workflow.ErrInvalidStateTransition
	}

	_ = s.activitySvc.Record(ctx, activitydomain.Entry{
		Action:     "service_record.submitted",
		TargetType: "service_record",
		TargetID:   record.ID.String(),
		VehicleID:  record.VehicleID,
	})
	return *record, nil
}

func (s *Service) Approve(ctx context.Context, id, actorID string) (maintenancedomain.ServiceRecord, error) {
	record, err := s.find(ctx, id)
	if err != nil {
		return maintenancedomain.ServiceRecord{}, err
	}
	actor, err := parseID(actorID, maintenancedomain.ErrInvalidRecord)
	if err != nil {
		return maintenancedomain.ServiceRecord{}, err
	}

	now := s.clock.Now()
	if err := record.Approve(actor, now); err != nil {
		return maintenancedomain.ServiceRecord{}, err
	}

	// The status flip and the marker update commit together or not at all.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.repo.UpdateWorkflow(ctx, tx, record, workflow.StatePending, now)
		if err != nil {
			return err
		}
		if !ok {
			return workflow.ErrInvalidStateTransition
		}
		major := record.ServiceType == maintenancedomain.ServiceTypeMajor
		return s.vehicleRepo.UpdateServiceMarkers(ctx, tx, record.VehicleID, record.Reading, record.ServiceDate, major)
	})
	if err != nil {
		return maintenancedomain.ServiceRecord{}, err
	}

	_ = s.activitySvc.Record(ctx, activitydomain.Entry{
		Action:     "service_record.approved",
		TargetType: "service_record",
		TargetID:   record.ID.String(),
		VehicleID:  record.VehicleID,
		Metadata: map[string]any{
			"service_type": string(record.ServiceType),
		},
	})
	return *record, nil
}

func (s *Service) Reject(ctx context.Context, id, actorID, reason string) (maintenancedomain.ServiceRecord, error) {
	record, err := s.find(ctx, id)
	if err != nil {
		return maintenancedomain.ServiceRecord{}, err
	}
	actor, err := parseID(actorID, maintenancedomain.ErrInvalidRecord)
	if err != nil {
		return maintenancedomain.ServiceRecord{}, err
	}

	now := s.clock.Now()
	if err := record.Reject(actor, reason, now); err != nil {
		return maintenancedomain.ServiceRecord{}, err
	}

	ok, err := s.repo.UpdateWorkflow(ctx, s.db, record, workflow.StatePending, now)
	if err != nil {
		return maintenancedomain.ServiceRecord{}, err
	}
	if !ok {
		return maintenancedomain.ServiceRecord{}, workflow.ErrInvalidStateTransition
	}

	_ = s.activitySvc.Record(ctx, activitydomain.Entry{
		Action:     "service_record.rejected",
		TargetType: "service_record",
		TargetID:   record.ID.String(),
		VehicleID:  record.VehicleID,
	})
	return *record, nil
}

func (s *Service) DeleteDraft(ctx context.Context, id string) error {
	record, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	ok, err := s.repo.DeleteDraft(ctx, s.db, record.ID)
	if err != nil {
		return err
	}
	if !ok {
		return workflow.ErrInvalidStateTransition
	}
	return nil
}

func (s *Service) find(ctx context.Context, id string) (*maintenancedomain.ServiceRecord, error) {
	recordID, err := parseID(id, maintenancedomain.ErrInvalidRecord)
	if err != nil {
		return nil, err
	}
	record, err := s.repo.FindByID(ctx, s.db, recordID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, maintenancedomain.ErrRecordNotFound
	}
	return record, nil
}

func parseID(raw string, invalid error) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, invalid
	}
	return id, nil
}
