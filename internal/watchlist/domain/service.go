package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Finding is one inspection result to materialize an item from.
type Finding struct {
	InspectionResultID snowflake.ID
	ItemName           string
	Rating             string
}

type Service interface {
	// CreateFromFindings materializes one active item per finding on the
	// given db handle, so inspection approval can run it inside its own
	// transaction. Component matching is best-effort.
	CreateFromFindings(ctx context.Context, db *gorm.DB, vehicleID snowflake.ID, findings []Finding) ([]WatchListItem, error)
	Get(ctx context.Context, id string) (WatchListItem, error)
	ListActiveByVehicle(ctx context.Context, vehicleID string) ([]WatchListItem, error)
	// Resolve closes one active item. A second resolve fails with
	// ErrItemNotActive.
	Resolve(ctx context.Context, id string, jobCardID *snowflake.ID) (WatchListItem, error)
	// BatchResolve resolves the listed items on the given db handle.
	// Candidates that are not active or belong to another vehicle are
	// skipped; the resolved count is returned.
	BatchResolve(ctx context.Context, db *gorm.DB, vehicleID, jobCardID snowflake.ID, itemIDs []snowflake.ID) (int, error)
	// MarkVehicleDisposed retires every active item of a disposed vehicle.
	MarkVehicleDisposed(ctx context.Context, vehicleID string) (int, error)
}

var (
	ErrItemNotFound  = errors.New("watch_list_item_not_found")
	ErrItemNotActive = errors.New("watch_list_item_not_active")
	ErrInvalidItem   = errors.New("invalid_watch_list_item")
)
