package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/haulmatic/fleetguard/internal/actorctx"
	activitydomain "github.com/haulmatic/fleetguard/internal/activity/domain"
	"github.com/haulmatic/fleetguard/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
}

func NewService(p Params) activitydomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("activity.service"),
		genID: p.GenID,
		clock: p.Clock,
	}
}

func (s *Service) Record(ctx context.Context, entry activitydomain.Entry) error {
	action := strings.TrimSpace(entry.Action)
	if action == "" {
		return activitydomain.ErrInvalidAction
	}

	actorType := actorctx.TypeSystem
	var actorID *string
	if actor, ok := actorctx.FromContext(ctx); ok {
		actorType = actor.Type
		if actor.ID != "" {
			id := actor.ID
			actorID = &id
		}
	}

	row := activitydomain.ActivityLog{
		ID:         s.genID.Generate(),
		ActorType:  actorType,
		ActorID:    actorID,
		Action:     action,
		TargetType: strings.TrimSpace(entry.TargetType),
		Metadata:   datatypes.JSONMap(entry.Metadata),
		CreatedAt:  s.clock.Now(),
	}
	if entry.TargetID != "" {
		id := entry.TargetID
		row.TargetID = &id
	}
	if entry.VehicleID != 0 {
		vid := entry.VehicleID
		row.VehicleID = &vid
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		// Activity logging never fails the operation that emitted it.
		s.log.Warn("activity record failed",
			zap.String("action", action),
			zap.Error(err),
		)
		return err
	}
	return nil
}
