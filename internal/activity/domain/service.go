package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Entry struct {
	Action     string
	TargetType string
	TargetID   string
	VehicleID  snowflake.ID
	Metadata   map[string]any
}

type Service interface {
	// Record persists one activity entry. The actor is taken from the
	// context when present, otherwise recorded as system.
	Record(ctx context.Context, entry Entry) error
}

var ErrInvalidAction = errors.New("invalid_action")
