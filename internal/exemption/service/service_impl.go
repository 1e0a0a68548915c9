package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/haulmatic/fleetguard/internal/activity/domain"
	"github.com/haulmatic/fleetguard/internal/clock"
	exemptiondomain "github.com/haulmatic/fleetguard/internal/exemption/domain"
	"github.com/haulmatic/fleetguard/internal/status"
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
	Repo        exemptiondomain.Repository
	ActivitySvc activitydomain.Service
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        exemptiondomain.Repository
	activitySvc activitydomain.Service
}

func NewService(p Params) exemptiondomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("exemption.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		activitySvc: p.ActivitySvc,
	}
}

func (s *Service) Create(ctx context.Context, req exemptiondomain.CreateExemptionRequest) (exemptiondomain.View, error) {
	vehicleID, err := parseID(req.VehicleID, exemptiondomain.ErrInvalidVehicleID)
	if err != nil {
		return exemptiondomain.View{}, err
	}
	createdBy, err := parseID(req.CreatedBy, exemptiondomain.ErrInvalidExemption)
	if err != nil {
		return exemptiondomain.View{}, err
	}
	if strings.TrimSpace(req.Reason) == "" {
		return exemptiondomain.View{}, exemptiondomain.ErrInvalidExemption
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() || !req.EndDate.After(req.StartDate) {
		return exemptiondomain.View{}, exemptiondomain.ErrInvalidExemption
	}

	now := s.clock.Now()
	exemption := exemptiondomain.Exemption{
		ID:        s.genID.Generate(),
		VehicleID: vehicleID,
		Reason:    strings.TrimSpace(req.Reason),
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Status:    exemptiondomain.StatusActive,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindActiveByVehicle(ctx, tx, vehicleID)
		if err != nil {
			return err
		}
		if existing != nil {
			return exemptiondomain.ErrActiveExists
		}
		return s.repo.Insert(ctx, tx, &exemption)
	})
	if err != nil {
		return exemptiondomain.View{}, err
	}

	_ = s.activitySvc.Record(ctx, activitydomain.Entry{
		Action:     "exemption.created",
		TargetType: "exemption",
		TargetID:   exemption.ID.String(),
		VehicleID:  vehicleID,
	})
	return s.view(exemption), nil
}

func (s *Service) Get(ctx context.Context, id string) (exemptiondomain.View, error) {
	exemption, err := s.find(ctx, id)
	if err != nil {
		return exemptiondomain.View{}, err
	}
	return s.view(*exemption), nil
}

func (s *Service) ListByVehicle(ctx context.Context, vehicleID string) ([]exemptiondomain.View, error) {
	id, err := parseID(vehicleID, exemptiondomain.ErrInvalidVehicleID)
	if err != nil {
		return nil, err
	}
	exemptions, err := s.repo.FindByVehicle(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	views := make([]exemptiondomain.View, 0, len(exemptions))
	for _, e := range exemptions {
		views = append(views, s.view(e))
	}
	return views, nil
}

func (s *Service) End(ctx context.Context, id string) (exemptiondomain.View, error) {
	return s.closeOut(ctx, id, exemptiondomain.StatusEnded, "exemption.ended")
}

func (s *Service) Cancel(ctx context.Context, id string) (exemptiondomain.View, error) {
	return s.closeOut(ctx, id, exemptiondomain.StatusCancelled, "exemption.cancelled")
}

func (s *Service) closeOut(ctx context.Context, id string, to exemptiondomain.ExemptionStatus, action string) (exemptiondomain.View, error) {
	exemption, err := s.find(ctx, id)
	if err != nil {
		return exemptiondomain.View{}, err
	}

	now := s.clock.Now()
	ok, err := s.repo.CloseOut(ctx, s.db, exemption.ID, to, now, now)
	if err != nil {
		return exemptiondomain.View{}, err
	}
	if !ok {
		return exemptiondomain.View{}, exemptiondomain.ErrExemptionNotActive
	}

	exemption.Status = to
	exemption.EndedAt = &now
	exemption.UpdatedAt = now

	_ = s.activitySvc.Record(ctx, activitydomain.Entry{
		Action:     action,
		TargetType: "exemption",
		TargetID:   exemption.ID.String(),
		VehicleID:  exemption.VehicleID,
	})
	return s.view(*exemption), nil
}

func (s *Service) find(ctx context.Context, id string) (*exemptiondomain.Exemption, error) {
	exemptionID, err := parseID(id, exemptiondomain.ErrInvalidExemption)
	if err != nil {
		return nil, err
	}
	exemption, err := s.repo.FindByID(ctx, s.db, exemptionID)
	if err != nil {
		return nil, err
	}
	if exemption == nil {
		return nil, exemptiondomain.ErrExemptionNotFound
	}
	return exemption, nil
}

func (s *Service) view(exemption exemptiondomain.Exemption) exemptiondomain.View {
	now := s.clock.Now()
	return exemptiondomain.View{
		Exemption: exemption,
		IsActive: exemption.Status == exemptiondomain.StatusActive &&
			!now.Before(exemption.StartDate) && now.Before(exemption.EndDate),
		DaysRemaining: status.DaysBetween(now, exemption.EndDate),
	}
}

func parseID(raw string, invalid error) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, invalid
	}
	return id, nil
}
