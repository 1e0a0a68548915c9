package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/haulmatic/fleetguard/internal/activity/domain"
	"github.com/haulmatic/fleetguard/internal/clock"
	inspectiondomain "github.com/haulmatic/fleetguard/internal/inspection/domain"
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
	Repo         inspectiondomain.Repository
	WatchListSvc watchlistdomain.Service
	ActivitySvc  activitydomain.Service
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         inspectiondomain.Repository
	watchListSvc watchlistdomain.Service
	activitySvc  activitydomain.Service
}

func NewService(p Params) inspectiondomain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("inspection.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		watchListSvc: p.WatchListSvc,
		activitySvc:  p.ActivitySvc,
	}
}

func (s *Service) Create(ctx context.Context, req inspectiondomain.CreateInspectionRequest) (inspectiondomain.Inspection, error) {
	vehicleID, err := parseID(req.VehicleID, inspectiondomain.ErrInvalidVehicleID)
	if err != nil {
		return inspectiondomain.Inspection{}, err
	}
	createdBy, err := parseID(req.CreatedBy, inspectiondomain.ErrInvalidInspection)
	if err != nil {
		return inspectiondomain.Inspection{}, err
	}
	if req.InspectionDate.IsZero() || len(req.Results) == 0 {
		return inspectiondomain.Inspection{}, inspectiondomain.ErrInvalidInspection
	}
	for _, result := range req.Results {
		if strings.TrimSpace(result.ItemName) == "" {
			return inspectiondomain.Inspection{}, inspectiondomain.ErrInvalidInspection
		}
		switch result.Rating {
		case inspectiondomain.RatingOK, inspectiondomain.RatingService,
			inspectiondomain.RatingRepair, inspectiondomain.RatingReplace:
		default:
			return inspectiondomain.Inspection{}, inspectiondomain.ErrInvalidRating
		}
	}

	now := s.clock.Now()
	inspection := inspectiondomain.Inspection{
		ID:             s.genID.Generate(),
		VehicleID:      vehicleID,
		InspectionDate: req.InspectionDate,
		Notes:          strings.TrimSpace(req.Notes),
		Record:         workflow.Record{Status: workflow.StateDraft},
		CreatedBy:      createdBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	results := make([]inspectiondomain.InspectionResult, 0, len(req.Results))
	for _, in := range req.Results {
		results = append(results, inspectiondomain.InspectionResult{
			ID:           s.genID.Generate(),
			InspectionID: inspection.ID,
			ItemName:     strings.TrimSpace(in.ItemName),
			Rating:       in.Rating,
			Notes:        strings.TrimSpace(in.Notes),
			CreatedAt:    now,
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &inspection); err != nil {
			return err
		}
		return s.repo.InsertResults(ctx, tx, results)
	})
	if err != nil {
		return inspectiondomain.Inspection{}, err
	}
	inspection.Results = results

	_ = s.activitySvc.Record(ctx, activitydomain.Entry{
		Action:     "inspection.created",
		TargetType: "inspection",
		TargetID:   inspection.ID.String(),
		VehicleID:  vehicleID,
	})
	return inspection, nil
}

func (s *Service) Get(ctx context.Context, id string) (inspectiondomain.Inspection, error) {
	inspection, err := s.find(ctx, id)
	if err != nil {
		return inspectiondomain.Inspection{}, err
	}
	results, err := s.repo.FindResults(ctx, s.db, inspection.ID)
	if err != nil {
		return inspectiondomain.Inspection{}, err
	}
	inspection.Results = results
	return *inspection, nil
}

func (s *Service) ListByVehicle(ctx context.Context, vehicleID string) ([]inspectiondomain.Inspection, error) {
	id, err := parseID(vehicleID, inspectiondomain.ErrInvalidVehicleID)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByVehicle(ctx, s.db, id)
}

func (s *Service) Submit(ctx context.Context, id, actorID string) (inspectiondomain.Inspection, error) {
	inspection, err := s.find(ctx, id)
	if err != nil {
		return inspectiondomain.Inspection{}, err
	}
	actor, err := parseID(actorID, inspectiondomain.ErrInvalidInspection)
	if err != nil {
		return inspectiondomain.Inspection{}, err
	}

	now := s.clock.Now()
	from := inspection.Status
	if from == workflow.StateRejected {
		err = inspection.Resubmit(actor, now)
	} else {
		err = inspection.Submit(actor, now)
	}
	if err != nil {
		return inspectiondomain.Inspection{}, err
	}

	ok, err := s.repo.UpdateWorkflow(ctx, s.db, inspection, from, now)
	if err != nil {
		return inspectiondomain.Inspection{}, err
	}
	if !ok {
		return inspectiondomain.Inspection{}, workflow.ErrInvalidStateTransition
	}

	_ = s.activitySvc.Record(ctx, activitydomain.Entry{
		Action:     "inspection.submitted",
		TargetType: "inspection",
		TargetID:   inspection.ID.String(),
		VehicleID:  inspection.VehicleID,
	})
	return *inspection, nil
}

func (s *Service) Approve(ctx context.Context, id, actorID string) (inspectiondomain.Inspection, error) {
	inspection, err := s.find(ctx, id)
	if err != nil {
		return inspectiondomain.Inspection{}, err
	}
	actor, err := parseID(actorID, inspectiondomain.ErrInvalidInspection)
	if err != nil {
		return inspectiondomain.Inspection{}, err
	}

	now := s.clock.Now()
	if err := inspection.Approve(actor, now); err != nil {
		return inspectiondomain.Inspection{}, err
	}

	var created int
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.repo.UpdateWorkflow(ctx, tx, inspection, workflow.StatePending, now)
		if err != nil {
			return err
		}
		if !ok {
			return workflow.ErrInvalidStateTransition
		}

		results, err := s.repo.FindResults(ctx, tx, inspection.ID)
		if err != nil {
			return err
		}
		var findings []watchlistdomain.Finding
		for _, result := range results {
			if !result.Rating.WatchListed() {
				continue
			}
			findings = append(findings, watchlistdomain.Finding{
				InspectionResultID: result.ID,
				ItemName:           result.ItemName,
				Rating:             string(result.Rating),
			})
		}
		items, err := s.watchListSvc.CreateFromFindings(ctx, tx, inspection.VehicleID, findings)
		if err != nil {
			return err
		}
		created = len(items)
		return nil
	})
	if err != nil {
		return inspectiondomain.Inspection{}, err
	}

	_ = s.activitySvc.Record(ctx, activitydomain.Entry{
		Action:     "inspection.approved",
		TargetType: "inspection",
		TargetID:   inspection.ID.String(),
		VehicleID:  inspection.VehicleID,
		Metadata: map[string]any{
			"watch_list_items_created": created,
		},
	})
	return *inspection, nil
}

func (s *Service) Reject(ctx context.Context, id, actorID, reason string) (inspectiondomain.Inspection, error) {
	inspection, err := s.find(ctx, id)
	if err != nil {
		return inspectiondomain.Inspection{}, err
	}
	actor, err := parseID(actorID, inspectiondomain.ErrInvalidInspection)
	if err != nil {
		return inspectiondomain.Inspection{}, err
	}

	now := s.clock.Now()
	if err := inspection.Reject(actor, reason, now); err != nil {
		return inspectiondomain.Inspection{}, err
	}

	ok, err := s.repo.UpdateWorkflow(ctx, s.db, inspection, workflow.StatePending, now)
	if err != nil {
		return inspectiondomain.Inspection{}, err
	}
	if !ok {
		return inspectiondomain.Inspection{}, workflow.ErrInvalidStateTransition
	}

	_ = s.activitySvc.Record(ctx, activitydomain.Entry{
		Action:     "inspection.rejected",
		TargetType: "inspection",
		TargetID:   inspection.ID.String(),
		VehicleID:  inspection.VehicleID,
	})
	return *inspection, nil
}

func (s *Service) find(ctx context.Context, id string) (*inspectiondomain.Inspection, error) {
	inspectionID, err := parseID(id, inspectiondomain.ErrInvalidInspection)
	if err != nil {
		return nil, err
	}
	inspection, err := s.repo.FindByID(ctx, s.db, inspectionID)
	if err != nil {
		return nil, err
	}
	if inspection == nil {
		return nil, inspectiondomain.ErrInspectionNotFound
	}
	return inspection, nil
}

func parseID(raw string, invalid error) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, invalid
	}
	return id, nil
}
