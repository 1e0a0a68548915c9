package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/haulmatic/fleetguard/internal/workflow"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, record *ServiceRecord) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ServiceRecord, error)
	FindByVehicle(ctx context.Context, db *gorm.DB, vehicleID snowflake.ID) ([]ServiceRecord, error)
	UpdateFields(ctx context.Context, db *gorm.DB, record *ServiceRecord) error
	// UpdateWorkflow persists the record's workflow fields, conditional on
	// the row still holding the expected source state. A false return means
	// a concurrent transition won the race.
	UpdateWorkflow(ctx context.Context, db *gorm.DB, record *ServiceRecord, from workflow.State, updatedAt time.Time) (bool, error)
	// DeleteDraft removes the record only while it is still a draft.
	DeleteDraft(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
}
