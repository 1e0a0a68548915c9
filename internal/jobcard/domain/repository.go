package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/haulmatic/fleetguard/internal/workflow"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, card *JobCard) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*JobCard, error)
	FindByVehicle(ctx context.Context, db *gorm.DB, vehicleID snowflake.ID) ([]JobCard, error)
	UpdateWorkflow(ctx context.Context, db *gorm.DB, card *JobCard, from workflow.State, updatedAt time.Time) (bool, error)
}
