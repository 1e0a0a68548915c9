package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	notificationdomain "github.com/haulmatic/fleetguard/internal/notification/domain"
	"gorm.io/gorm"
)

type repo struct{}

func NewRepository() notificationdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, n *notificationdomain.Notification) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO notifications (
			id, user_id, vehicle_id, tax_period_id, exemption_id, type,
			channel, status, days_before_expiry, resend_id, failure_reason,
			sent_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID,
		n.UserID,
		n.VehicleID,
		n.TaxPeriodID,
		n.ExemptionID,
		n.Type,
		n.Channel,
		n.Status,
		n.DaysBeforeExpiry,
		n.ResendID,
		n.FailureReason,
		n.SentAt,
		n.CreatedAt,
		n.UpdatedAt,
	).Error
}

func (r *repo) MarkSent(ctx context.Context, db *gorm.DB, id snowflake.ID, resendID string, at time.Time) error {
	var resend *string
	if resendID != "" {
		resend = &resendID
	}
	return db.WithContext(ctx).Exec(
		`UPDATE notifications
		 SET status = ?, resend_id = ?, sent_at = ?, updated_at = ?
		 WHERE id = ?`,
		notificationdomain.StatusSent,
		resend,
		at,
		at,
		id,
	).Error
}

func (r *repo) MarkFailed(ctx context.Context, db *gorm.DB, id snowflake.ID, reason string, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE notifications
		 SET status = ?, failure_reason = ?, updated_at = ?
		 WHERE id = ?`,
		notificationdomain.StatusFailed,
		reason,
		at,
		id,
	).Error
}

func (r *repo) UpdateStatusByResendID(ctx context.Context, db *gorm.DB, resendID string, status notificationdomain.Status, reason *string, at time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE notifications
		 SET status = ?, failure_reason = ?, updated_at = ?
		 WHERE resend_id = ?`,
		status,
		reason,
		at,
		resendID,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) ExistsWithInterval(ctx context.Context, db *gorm.DB, userID, vehicleID snowflake.ID, typ notificationdomain.Type, daysBeforeExpiry int) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM notifications
		 WHERE user_id = ? AND vehicle_id = ? AND type = ?
		   AND days_before_expiry = ? AND status <> ?`,
		userID,
		vehicleID,
		typ,
		daysBeforeExpiry,
		notificationdomain.StatusFailed,
	).Scan(&count).Error
	return count > 0, err
}

func (r *repo) ExistsSince(ctx context.Context, db *gorm.DB, userID, vehicleID snowflake.ID, typ notificationdomain.Type, cutoff time.Time) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM notifications
		 WHERE user_id = ? AND vehicle_id = ? AND type = ?
		   AND created_at > ? AND status <> ?`,
		userID,
		vehicleID,
		typ,
		cutoff,
		notificationdomain.StatusFailed,
	).Scan(&count).Error
	return count > 0, err
}
