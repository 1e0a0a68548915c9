package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/haulmatic/fleetguard/internal/workflow"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, inspection *Inspection) error
	InsertResults(ctx context.Context, db *gorm.DB, results []InspectionResult) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Inspection, error)
	FindResults(ctx context.Context, db *gorm.DB, inspectionID snowflake.ID) ([]InspectionResult, error)
	FindByVehicle(ctx context.Context, db *gorm.DB, vehicleID snowflake.ID) ([]Inspection, error)
	// UpdateWorkflow is conditional on the row still holding the expected
	// source state.
	UpdateWorkflow(ctx context.Context, db *gorm.DB, inspection *Inspection, from workflow.State, updatedAt time.Time) (bool, error)
}
