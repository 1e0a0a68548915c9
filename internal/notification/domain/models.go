// Package domain contains the notification tracking record. One row per
// attempted delivery; the scheduler queries these rows for dedup.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Type string

const (
	TypeTaxExpiryReminder       Type = "tax_expiry_reminder"
	TypeTaxExpired              Type = "tax_expired"
	TypeTaxPenalty              Type = "tax_penalty"
	TypeExemptionExpiryReminder Type = "exemption_expiry_reminder"
)

type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelPush     Channel = "push"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusFailed    Status = "failed"
)

// Notification tracks one delivery attempt. DaysBeforeExpiry is part of
// the dedup key: the matched interval for reminders, 0 for expired, null
// for penalty. ResendID is the provider's message id, matched by the
// delivery webhook.
type Notification struct {
	ID            snowflake.ID  `gorm:"primaryKey" json:"id"`
	UserID        snowflake.ID  `gorm:"not null;index" json:"user_id"`
	VehicleID     snowflake.ID  `gorm:"not null;index" json:"vehicle_id"`
	TaxPeriodID   *snowflake.ID `json:"tax_period_id,omitempty"`
	ExemptionID   *snowflake.ID `json:"exemption_id,omitempty"`
	Type          Type          `gorm:"type:text;not null" json:"type"`
	Channel       Channel       `gorm:"type:text;not null" json:"channel"`
	Status        Status        `gorm:"type:text;not null;default:pending" json:"status"`
	DaysBeforeExpiry *int       `json:"days_before_expiry,omitempty"`
	ResendID      *string       `gorm:"type:text;index" json:"resend_id,omitempty"`
	FailureReason *string       `gorm:"type:text" json:"failure_reason,omitempty"`
	SentAt        *time.Time    `json:"sent_at,omitempty"`
	CreatedAt     time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Notification) TableName() string { return "notifications" }
