package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/haulmatic/fleetguard/internal/activity/domain"
	"github.com/haulmatic/fleetguard/internal/clock"
	"github.com/haulmatic/fleetguard/internal/config"
	"github.com/haulmatic/fleetguard/internal/status"
	taxdomain "github.com/haulmatic/fleetguard/internal/tax/domain"
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
	Reminders   *config.ReminderConfigHolder
	Repo        taxdomain.Repository
	ActivitySvc activitydomain.Service
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	reminders   *config.ReminderConfigHolder
	repo        taxdomain.Repository
	activitySvc activitydomain.Service
}

func NewService(p Params) taxdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("tax.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		reminders:   p.Reminders,
		repo:        p.Repo,
		activitySvc: p.ActivitySvc,
	}
}

func (s *Service) CreatePeriod(ctx context.Context, req taxdomain.CreatePeriodRequest) (taxdomain.View, error) {
	vehicleID, err := parseID(req.VehicleID, taxdomain.ErrInvalidVehicleID)
	if err != nil {
		return taxdomain.View{}, err
	}
	createdBy, err := parseID(req.CreatedBy, taxdomain.ErrInvalidPeriod)
	if err != nil {
		return taxdomain.View{}, err
	}
	if req.EndDate.IsZero() || req.StartDate.IsZero() || !req.EndDate.After(req.StartDate) {
		return taxdomain.View{}, taxdomain.ErrInvalidPeriod
	}
	if req.AmountPaid < 0 {
		return taxdomain.View{}, taxdomain.ErrInvalidPeriod
	}

	now := s.clock.Now()
	period := taxdomain.TaxPeriod{
		ID:         s.genID.Generate(),
		VehicleID:  vehicleID,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		AmountPaid: req.AmountPaid,
		Status:     taxdomain.PeriodStatusActive,
		CreatedBy:  createdBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		previous, err := s.repo.FindLatestByVehicle(ctx, tx, vehicleID)
		if err != nil {
			return err
		}
		if previous != nil {
			if req.StartDate.Before(previous.EndDate) {
				return taxdomain.ErrPeriodOverlap
			}
			// The gap since the last cover, not this period's own expiry,
			// decides the penalty flag.
			gap := s.reminders.Current().PenaltyGapThreshold
			period.PenaltyIncurred = status.PenaltyGap(previous.EndDate, req.StartDate, gap)
		}
		return s.repo.Insert(ctx, tx, &period)
	})
	if err != nil {
		return taxdomain.View{}, err
	}

	_ = s.activitySvc.Record(ctx, activitydomain.Entry{
		Action:     "tax_period.created",
		TargetType: "tax_period",
		TargetID:   period.ID.String(),
		VehicleID:  vehicleID,
		Metadata: map[string]any{
			"penalty_incurred": period.PenaltyIncurred,
		},
	})
	return s.view(period), nil
}

func (s *Service) GetPeriod(ctx context.Context, id string) (taxdomain.View, error) {
	periodID, err := parseID(id, taxdomain.ErrInvalidPeriod)
	if err != nil {
		return taxdomain.View{}, err
	}
	period, err := s.repo.FindByID(ctx, s.db, periodID)
	if err != nil {
		return taxdomain.View{}, err
	}
	if period == nil {
		return taxdomain.View{}, taxdomain.ErrPeriodNotFound
	}
	return s.view(*period), nil
}

func (s *Service) ListPeriods(ctx context.Context, vehicleID string) ([]taxdomain.View, error) {
	id, err := parseID(vehicleID, taxdomain.ErrInvalidVehicleID)
	if err != nil {
		return nil, err
	}
	periods, err := s.repo.FindByVehicle(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	views := make([]taxdomain.View, 0, len(periods))
	for _, p := range periods {
		views = append(views, s.view(p))
	}
	return views, nil
}

func (s *Service) CurrentPeriod(ctx context.Context, vehicleID string) (taxdomain.View, error) {
	id, err := parseID(vehicleID, taxdomain.ErrInvalidVehicleID)
	if err != nil {
		return taxdomain.View{}, err
	}
	period, err := s.repo.FindLatestByVehicle(ctx, s.db, id)
	if err != nil {
		return taxdomain.View{}, err
	}
	if period == nil {
		return taxdomain.View{}, taxdomain.ErrPeriodNotFound
	}
	return s.view(*period), nil
}

func (s *Service) view(period taxdomain.TaxPeriod) taxdomain.View {
	cfg := s.reminders.Current()
	st := status.TaxWith(period.EndDate, s.clock.Now(), cfg.WarningWindowDays, cfg.PenaltyGraceDays)
	return taxdomain.View{
		TaxPeriod:     period,
		TaxStatus:     st.State,
		DaysRemaining: st.DaysRemaining,
	}
}

func parseID(raw string, invalid error) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, invalid
	}
	return id, nil
}
