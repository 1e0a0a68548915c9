package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/haulmatic/fleetguard/internal/activity/domain"
	"github.com/haulmatic/fleetguard/internal/clock"
	watchlistdomain "github.com/haulmatic/fleetguard/internal/watchlist/domain"
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
	Repo        watchlistdomain.Repository
	ActivitySvc activitydomain.Service
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        watchlistdomain.Repository
	activitySvc activitydomain.Service
}

func NewService(p Params) watchlistdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("watchlist.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		activitySvc: p.ActivitySvc,
	}
}

func (s *Service) CreateFromFindings(ctx context.Context, db *gorm.DB, vehicleID snowflake.ID, findings []watchlistdomain.Finding) ([]watchlistdomain.WatchListItem, error) {
	if len(findings) == 0 {
		return nil, nil
	}

	components, err := s.repo.ListComponents(ctx, db)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	items := make([]watchlistdomain.WatchListItem, 0, len(findings))
	for _, f := range findings {
		item := watchlistdomain.WatchListItem{
			ID:                 s.genID.Generate(),
			VehicleID:          vehicleID,
			InspectionResultID: f.InspectionResultID,
			ComponentID:        matchComponent(components, f.ItemName),
			ItemName:           f.ItemName,
			RatingAtCreation:   f.Rating,
			Status:             watchlistdomain.StatusActive,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		items = append(items, item)
	}

	if err := s.repo.InsertBatch(ctx, db, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, id string) (watchlistdomain.WatchListItem, error) {
	itemID, err := parseID(id)
	if err != nil {
		return watchlistdomain.WatchListItem{}, err
	}
	item, err := s.repo.FindByID(ctx, s.db, itemID)
	if err != nil {
		return watchlistdomain.WatchListItem{}, err
	}
	if item == nil {
		return watchlistdomain.WatchListItem{}, watchlistdomain.ErrItemNotFound
	}
	return *item, nil
}

func (s *Service) ListActiveByVehicle(ctx context.Context, vehicleID string) ([]watchlistdomain.WatchListItem, error) {
	id, err := parseID(vehicleID)
	if err != nil {
		return nil, err
	}
	return s.repo.FindActiveByVehicle(ctx, s.db, id)
}

func (s *Service) Resolve(ctx context.Context, id string, jobCardID *snowflake.ID) (watchlistdomain.WatchListItem, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return watchlistdomain.WatchListItem{}, err
	}

	now := s.clock.Now()
	ok, err := s.repo.MarkResolved(ctx, s.db, item.ID, jobCardID, now)
	if err != nil {
		return watchlistdomain.WatchListItem{}, err
	}
	if !ok {
		return watchlistdomain.WatchListItem{}, watchlistdomain.ErrItemNotActive
	}

	item.Status = watchlistdomain.StatusResolved
	item.ResolvedAt = &now
	item.ResolvedByJobCard = jobCardID

	_ = s.activitySvc.Record(ctx, activitydomain.Entry{
		Action:     "watch_list_item.resolved",
		TargetType: "watch_list_item",
		TargetID:   item.ID.String(),
		VehicleID:  item.VehicleID,
	})
	return item, nil
}

func (s *Service) BatchResolve(ctx context.Context, db *gorm.DB, vehicleID, jobCardID snowflake.ID, itemIDs []snowflake.ID) (int, error) {
	now := s.clock.Now()
	resolved := 0
	for _, id := range itemIDs {
		item, err := s.repo.FindByID(ctx, db, id)
		if err != nil {
			return resolved, err
		}
		// Wrong vehicle or already closed: skip, not an error.
		if item == nil || item.VehicleID != vehicleID || item.Status != watchlistdomain.StatusActive {
			s.log.Debug("batch resolve skipped item",
				zap.Int64("item_id", int64(id)),
				zap.Int64("job_card_id", int64(jobCardID)),
			)
			continue
		}
		jc := jobCardID
		ok, err := s.repo.MarkResolved(ctx, db, id, &jc, now)
		if err != nil {
			return resolved, err
		}
		if ok {
			resolved++
		}
	}
	return resolved, nil
}

func (s *Service) MarkVehicleDisposed(ctx context.Context, vehicleID string) (int, error) {
	id, err := parseID(vehicleID)
	if err != nil {
		return 0, err
	}
	n, err := s.repo.MarkDisposedByVehicle(ctx, s.db, id, s.clock.Now())
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// matchComponent resolves a checklist item name to a catalog component by
// normalized containment in either direction. The longest matching name
// wins; no match returns nil.
func matchComponent(components []watchlistdomain.Component, itemName string) *snowflake.ID {
	needle := normalize(itemName)
	if needle == "" {
		return nil
	}

	var best *watchlistdomain.Component
	for i := range components {
		name := normalize(components[i].Name)
		if name == "" {
			continue
		}
		if !strings.Contains(needle, name) && !strings.Contains(name, needle) {
			continue
		}
		if best == nil || len(components[i].Name) > len(best.Name) {
			best = &components[i]
		}
	}
	if best == nil {
		return nil
	}
	id := best.ID
	return &id
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func parseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, watchlistdomain.ErrInvalidItem
	}
	return id, nil
}
