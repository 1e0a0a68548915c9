// Package domain contains the notification recipient model. User
// management proper lives outside the core; this is the slice the
// dispatcher and scheduler need.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type User struct {
	ID    snowflake.ID `gorm:"primaryKey" json:"id"`
	Name  string       `gorm:"type:text;not null" json:"name"`
	Email string       `gorm:"type:text" json:"email"`
	Phone string       `gorm:"type:text" json:"phone"`
	// DeviceToken is the push registration token, when the user has one.
	DeviceToken string `gorm:"type:text" json:"device_token,omitempty"`

	NotifyEmail    bool `gorm:"not null;default:false" json:"notify_email"`
	NotifySMS      bool `gorm:"column:notify_sms;not null;default:false" json:"notify_sms"`
	NotifyWhatsApp bool `gorm:"column:notify_whatsapp;not null;default:false" json:"notify_whatsapp"`
	NotifyPush     bool `gorm:"not null;default:false" json:"notify_push"`

	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }
