package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	userdomain "github.com/haulmatic/fleetguard/internal/user/domain"
)

// Message is the channel-independent payload.
type Message struct {
	Subject string
	Body    string
}

// Delivery is one requested notification.
type Delivery struct {
	User        userdomain.User
	VehicleID   snowflake.ID
	TaxPeriodID *snowflake.ID
	ExemptionID *snowflake.ID
	Type        Type
	Channel     Channel
	// DaysBeforeExpiry is the matched reminder interval; nil for penalty
	// notices.
	DaysBeforeExpiry *int
	Message          Message
	// DryRun computes and logs but writes and sends nothing.
	DryRun bool
}

type Outcome string

const (
	OutcomeSent    Outcome = "sent"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

type Dispatcher interface {
	// Dispatch checks the recipient's opt-in and contact field for the
	// channel (silent skip when absent), persists a pending tracking
	// record, sends through the provider under the channel's rate budget
	// and updates the record to sent or failed. Rate-limit exhaustion and
	// provider failures are reported through the Outcome, not an error;
	// the returned error is reserved for storage problems.
	Dispatch(ctx context.Context, delivery Delivery) (Outcome, error)
	// HandleProviderEvent reconciles a delivery webhook by provider
	// message id. Unmatched ids are logged and ignored.
	HandleProviderEvent(ctx context.Context, eventType, externalID string) error
}

// Query is the dedup lookup surface the scheduler uses.
type Query interface {
	// SentWithInterval reports whether a notification with the exact dedup
	// key (user, vehicle, type, interval) already exists in any
	// non-failed state.
	SentWithInterval(ctx context.Context, userID, vehicleID snowflake.ID, typ Type, daysBeforeExpiry int) (bool, error)
	// SentSince reports whether a non-failed notification of this type was
	// created after the cutoff, regardless of interval.
	SentSince(ctx context.Context, userID, vehicleID snowflake.ID, typ Type, cutoff time.Time) (bool, error)
}

var ErrNotificationNotFound = errors.New("notification_not_found")
