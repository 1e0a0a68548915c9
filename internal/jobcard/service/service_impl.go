package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/haulmatic/fleetguard/internal/activity/domain"
	"github.com/haulmatic/fleetguard/internal/clock"
	jobcarddomain "github.com/haulmatic/fleetguard/internal/jobcard/domain"
	watchlistdomain "github.com/haulmatic/fleetguard/internal/watchlist/domain"
	"github.com/haulmatic/fleetguard/internal/workflow"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         jobcarddomain.Repository
	WatchListSvc watchlistdomain.Service
	ActivitySvc  activitydomain.Service
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         jobcarddomain.Repository
	watchListSvc watchlistdomain.Service
	activitySvc  activitydomain.Service
}

func NewService(p Params) jobcarddomain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("jobcard.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		watchListSvc: p.WatchListSvc,
		activitySvc:  p.ActivitySvc,
	}
}

func (s *Service) Create(ctx context.Context, req jobcarddomain.CreateJobCardRequest) (jobcarddomain.JobCard, error) {
	vehicleID, err := parseID(req.VehicleID, jobcarddomain.ErrInvalidVehicleID)
	if err != nil {
		return jobcarddomain.JobCard{}, err
	}
	createdBy, err := parseID(req.CreatedBy, jobcarddomain.ErrInvalidJobCard)
	if err != nil {
		return jobcarddomain.JobCard{}, err
	}
	if strings.TrimSpace(req.Title) == "" || req.Cost < 0 {
		return jobcarddomain.JobCard{}, jobcarddomain.ErrInvalidJobCard
	}

	now := s.clock.Now()
	card := jobcarddomain.JobCard{
		ID:          s.genID.Generate(),
		VehicleID:   vehicleID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Cost:        req.Cost,
		Record:      workflow.Record{Status: workflow.StateDraft},
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, s.db, &card); err != nil {
		return jobcarddomain.JobCard{}, err
	}

	_ = s.activitySvc.Record(ctx, activitydomain.Entry{
		Action:     "job_card.created",
		TargetType: "job_card",
		TargetID:   card.ID.String(),
		VehicleID:  vehicleID,
	})
	return card, nil
}

func (s *Service) Get(ctx context.Context, id string) (jobcarddomain.JobCard, error) {
	card, err := s.find(ctx, id)
	if err != nil {
		return jobcarddomain.JobCard{}, err
	}
	return *card, nil
}

func (s *Service) ListByVehicle(ctx context.Context, vehicleID string) ([]jobcarddomain.JobCard, error) {
	id, err := parseID(vehicleID, jobcarddomain.ErrInvalidVehicleID)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByVehicle(ctx, s.db, id)
}

func (s *Service) Submit(ctx context.Context, id, actorID string) (jobcarddomain.JobCard, error) {
	card, err := s.find(ctx, id)
	if err != nil {
		return jobcarddomain.JobCard{}, err
	}
	actor, err := parseID(actorID, jobcarddomain.ErrInvalidJobCard)
	if err != nil {
		return jobcarddomain.JobCard{}, err
	}

	now := s.clock.Now()
	from := card.Status
	if from == workflow.StateRejected {
		err = card.Resubmit(actor, now)
	} else {
		err = card.Submit(actor, now)
	}
	if err != nil {
		return jobcarddomain.JobCard{}, err
	}

	ok, err := s.repo.UpdateWorkflow(ctx, s.db, card, from, now)
	if err != nil {
		return jobcarddomain.JobCard{}, err
	}
	if !ok {
		return jobcarddomain.JobCard{}, workflow.ErrInvalidStateTransition
	}

	_ = s.activitySvc.Record(ctx, activitydomain.Entry{
		Action:     "job_card.submitted",
		TargetType: "job_card",
		TargetID:   card.ID.String(),
		VehicleID:  card.VehicleID,
	})
	return *card, nil
}

func (s *Service) Approve(ctx context.Context, id, actorID string, watchListItemIDs []string) (jobcarddomain.ApproveResult, error) {
	card, err := s.find(ctx, id)
	if err != nil {
		return jobcarddomain.ApproveResult{}, err
	}
	actor, err := parseID(actorID, jobcarddomain.ErrInvalidJobCard)
	if err != nil {
		return jobcarddomain.ApproveResult{}, err
	}

	itemIDs := make([]snowflake.ID, 0, len(watchListItemIDs))
	for _, raw := range watchListItemIDs {
		itemID, err := parseID(raw, watchlistdomain.ErrInvalidItem)
		if err != nil {
			return jobcarddomain.ApproveResult{}, err
		}
		itemIDs = append(itemIDs, itemID)
	}

	now := s.clock.Now()
	if err := card.Approve(actor, now); err != nil {
		return jobcarddomain.ApproveResult{}, err
	}

	var resolved int
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.repo.UpdateWorkflow(ctx, tx, card, workflow.StatePending, now)
		if err != nil {
			return err
		}
		if !ok {
			return workflow.ErrInvalidStateTransition
		}
		resolved, err = s.watchListSvc.BatchResolve(ctx, tx, card.VehicleID, card.ID, itemIDs)
		return err
	})
	if err != nil {
		return jobcarddomain.ApproveResult{}, err
	}

	_ = s.activitySvc.Record(ctx, activitydomain.Entry{
		Action:     "job_card.approved",
		TargetType: "job_card",
		TargetID:   card.ID.String(),
		VehicleID:  card.VehicleID,
		Metadata: map[string]any{
			"watch_list_items_resolved": resolved,
		},
	})
	return jobcarddomain.ApproveResult{JobCard: *card, ItemsResolved: resolved}, nil
}

func (s *Service) Reject(ctx context.Context, id, actorID, reason string) (jobcarddomain.JobCard, error) {
	card, err := s.find(ctx, id)
	if err != nil {
		return jobcarddomain.JobCard{}, err
	}
	actor, err := parseID(actorID, jobcarddomain.ErrInvalidJobCard)
	if err != nil {
		return jobcarddomain.JobCard{}, err
	}

	now := s.clock.Now()
	if err := card.Reject(actor, reason, now); err != nil {
		return jobcarddomain.JobCard{}, err
	}

	ok, err := s.repo.UpdateWorkflow(ctx, s.db, card, workflow.StatePending, now)
	if err != nil {
		return jobcarddomain.JobCard{}, err
	}
	if !ok {
		return jobcarddomain.JobCard{}, workflow.ErrInvalidStateTransition
	}

	_ = s.activitySvc.Record(ctx, activitydomain.Entry{
		Action:     "job_card.rejected",
		TargetType: "job_card",
		TargetID:   card.ID.String(),
		VehicleID:  card.VehicleID,
	})
	return *card, nil
}

func (s *Service) find(ctx context.Context, id string) (*jobcarddomain.JobCard, error) {
	cardID, err := parseID(id, jobcarddomain.ErrInvalidJobCard)
	if err != nil {
		return nil, err
	}
	card, err := s.repo.FindByID(ctx, s.db, cardID)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, jobcarddomain.ErrJobCardNotFound
	}
	return card, nil
}

func parseID(raw string, invalid error) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, invalid
	}
	return id, nil
}
