package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, notification *Notification) error
	// MarkSent records a successful provider call.
	MarkSent(ctx context.Context, db *gorm.DB, id snowflake.ID, resendID string, at time.Time) error
	// MarkFailed records a permanent delivery failure.
	MarkFailed(ctx context.Context, db *gorm.DB, id snowflake.ID, reason string, at time.Time) error
	// UpdateStatusByResendID is the webhook path. Returns false when no
	// record carries the external id.
	UpdateStatusByResendID(ctx context.Context, db *gorm.DB, resendID string, status Status, reason *string, at time.Time) (bool, error)
	ExistsWithInterval(ctx context.Context, db *gorm.DB, userID, vehicleID snowflake.ID, typ Type, daysBeforeExpiry int) (bool, error)
	ExistsSince(ctx context.Context, db *gorm.DB, userID, vehicleID snowflake.ID, typ Type, cutoff time.Time) (bool, error)
}
