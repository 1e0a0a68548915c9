package domain

import (
	"context"
	"errors"
)

type Service interface {
	Get(ctx context.Context, id string) (User, error)
	// ReminderRecipients returns the active users with email reminders
	// enabled, optionally narrowed to one user id (zero value means all).
	ReminderRecipients(ctx context.Context, userID string) ([]User, error)
}

var (
	ErrUserNotFound  = errors.New("user_not_found")
	ErrInvalidUserID = errors.New("invalid_user_id")
)
