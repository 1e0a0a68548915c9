package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	notificationdomain "github.com/haulmatic/fleetguard/internal/notification/domain"
	"gorm.io/gorm"
)

type query struct {
	db   *gorm.DB
	repo notificationdomain.Repository
}

func NewQuery(db *gorm.DB, repo notificationdomain.Repository) notificationdomain.Query {
	return &query{db: db, repo: repo}
}

func (q *query) SentWithInterval(ctx context.Context, userID, vehicleID snowflake.ID, typ notificationdomain.Type, daysBeforeExpiry int) (bool, error) {
	return q.repo.ExistsWithInterval(ctx, q.db, userID, vehicleID, typ, daysBeforeExpiry)
}

func (q *query) SentSince(ctx context.Context, userID, vehicleID snowflake.ID, typ notificationdomain.Type, cutoff time.Time) (bool, error) {
	return q.repo.ExistsSince(ctx, q.db, userID, vehicleID, typ, cutoff)
}
