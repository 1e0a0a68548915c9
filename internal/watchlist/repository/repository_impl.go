package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	watchlistdomain "github.com/haulmatic/fleetguard/internal/watchlist/domain"
	"gorm.io/gorm"
)

const selectColumns = `id, vehicle_id, inspection_result_id, component_id,
	item_name, rating_at_creation, status, resolved_at,
	resolved_by_job_card_id, created_at, updated_at`

type repo struct{}

func NewRepository() watchlistdomain.Repository {
	return &repo{}
}

func (r *repo) InsertBatch(ctx context.Context, db *gorm.DB, items []watchlistdomain.WatchListItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		err := db.WithContext(ctx).Exec(
			`INSERT INTO watch_list_items (
				id, vehicle_id, inspection_result_id, component_id, item_name,
				rating_at_creation, status, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			items[i].ID,
			items[i].VehicleID,
			items[i].InspectionResultID,
			items[i].ComponentID,
			items[i].ItemName,
			items[i].RatingAtCreation,
			items[i].Status,
			items[i].CreatedAt,
			items[i].UpdatedAt,
		).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*watchlistdomain.WatchListItem, error) {
	var item watchlistdomain.WatchListItem
	err := db.WithContext(ctx).Raw(
		`SELECT `+selectColumns+` FROM watch_list_items WHERE id = ?`,
		id,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) FindActiveByVehicle(ctx context.Context, db *gorm.DB, vehicleID snowflake.ID) ([]watchlistdomain.WatchListItem, error) {
	var items []watchlistdomain.WatchListItem
	err := db.WithContext(ctx).Raw(
		`SELECT `+selectColumns+` FROM watch_list_items
		 WHERE vehicle_id = ? AND status = ?
		 ORDER BY created_at ASC`,
		vehicleID,
		watchlistdomain.StatusActive,
	).Scan(&items).Error
	return items, err
}

func (r *repo) MarkResolved(ctx context.Context, db *gorm.DB, id snowflake.ID, jobCardID *snowflake.ID, at time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE watch_list_items
		 SET status = ?, resolved_at = ?, resolved_by_job_card_id = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		watchlistdomain.StatusResolved,
		at,
		jobCardID,
		at,
		id,
		watchlistdomain.StatusActive,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) MarkDisposedByVehicle(ctx context.Context, db *gorm.DB, vehicleID snowflake.ID, at time.Time) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE watch_list_items
		 SET status = ?, updated_at = ?
		 WHERE vehicle_id = ? AND status = ?`,
		watchlistdomain.StatusMachineDisposed,
		at,
		vehicleID,
		watchlistdomain.StatusActive,
	)
	return res.RowsAffected, res.Error
}

func (r *repo) ListComponents(ctx context.Context, db *gorm.DB) ([]watchlistdomain.Component, error) {
	var components []watchlistdomain.Component
	err := db.WithContext(ctx).Raw(
		`SELECT id, name FROM components ORDER BY name ASC`,
	).Scan(&components).Error
	return components, err
}
