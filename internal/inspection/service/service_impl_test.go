package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/haulmatic/fleetguard/internal/activity/domain"
	"github.com/haulmatic/fleetguard/internal/clock"
	inspectiondomain "github.com/haulmatic/fleetguard/internal/inspection/domain"
	watchlistdomain "github.com/haulmatic/fleetguard/internal/watchlist/domain"
	"github.com/haulmatic/fleetguard/internal/workflow"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeRepo struct {
	inspections map[snowflake.ID]*inspectiondomain.Inspection
	results     map[snowflake.ID][]inspectiondomain.InspectionResult
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		inspections: map[snowflake.ID]*inspectiondomain.Inspection{},
		results:     map[snowflake.ID][]inspectiondomain.InspectionResult{},
	}
}

func (f *fakeRepo) Insert(ctx context.Context, db *gorm.DB, inspection *inspectiondomain.Inspection) error {
	cp := *inspection
	cp.Results = nil
	f.inspections[inspection.ID] = &cp
	return nil
}

func (f *fakeRepo) InsertResults(ctx context.Context, db *gorm.DB, results []inspectiondomain.InspectionResult) error {
	for _, r := range results {
		f.results[r.InspectionID] = append(f.results[r.InspectionID], r)
	}
	return nil
}

func (f *fakeRepo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*inspectiondomain.Inspection, error) {
	if i, ok := f.inspections[id]; ok {
		cp := *i
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeRepo) FindResults(ctx context.Context, db *gorm.DB, inspectionID snowflake.ID) ([]inspectiondomain.InspectionResult, error) {
	return f.results[inspectionID], nil
}

func (f *fakeRepo) FindByVehicle(ctx context.Context, db *gorm.DB, vehicleID snowflake.ID) ([]inspectiondomain.Inspection, error) {
	var out []inspectiondomain.Inspection
	for _, i := range f.inspections {
		if i.VehicleID == vehicleID {
			out = append(out, *i)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateWorkflow(ctx context.Context, db *gorm.DB, inspection *inspectiondomain.Inspection, from workflow.State, updatedAt time.Time) (bool, error) {
	stored, ok := f.inspections[inspection.ID]
	if !ok || stored.Status != from {
		return false, nil
	}
	cp := *inspection
	cp.Results = nil
	cp.UpdatedAt = updatedAt
	f.inspections[inspection.ID] = &cp
	return true, nil
}

type fakeWatchList struct {
	created []watchlistdomain.Finding
}

func (f *fakeWatchList) CreateFromFindings(ctx context.Context, db *gorm.DB, vehicleID snowflake.ID, findings []watchlistdomain.Finding) ([]watchlistdomain.WatchListItem, error) {
	f.created = append(f.created, findings...)
	items := make([]watchlistdomain.WatchListItem, len(findings))
	for i, finding := range findings {
		items[i] = watchlistdomain.WatchListItem{
			ID:                 snowflake.ID(1000 + i),
			VehicleID:          vehicleID,
			InspectionResultID: finding.InspectionResultID,
			ItemName:           finding.ItemName,
			RatingAtCreation:   finding.Rating,
			Status:             watchlistdomain.StatusActive,
		}
	}
	return items, nil
}

func (f *fakeWatchList) Get(ctx context.Context, id string) (watchlistdomain.WatchListItem, error) {
	return watchlistdomain.WatchListItem{}, nil
}

func (f *fakeWatchList) ListActiveByVehicle(ctx context.Context, vehicleID string) ([]watchlistdomain.WatchListItem, error) {
	return nil, nil
}

func (f *fakeWatchList) Resolve(ctx context.Context, id string, jobCardID *snowflake.ID) (watchlistdomain.WatchListItem, error) {
	return watchlistdomain.WatchListItem{}, nil
}

func (f *fakeWatchList) BatchResolve(ctx context.Context, db *gorm.DB, vehicleID, jobCardID snowflake.ID, itemIDs []snowflake.ID) (int, error) {
	return 0, nil
}

func (f *fakeWatchList) MarkVehicleDisposed(ctx context.Context, vehicleID string) (int, error) {
	return 0, nil
}

type noopActivity struct{}

func (noopActivity) Record(ctx context.Context, entry activitydomain.Entry) error { return nil }

func newTestService(t *testing.T) (*Service, *fakeRepo, *fakeWatchList) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	node, err := snowflake.NewNode(6)
	require.NoError(t, err)

	repo := newFakeRepo()
	wl := &fakeWatchList{}

	svc := NewService(Params{
		DB:           db,
		Log:          zap.NewNop(),
		GenID:        node,
		Clock:        clock.NewFakeClock(time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)),
		Repo:         repo,
		WatchListSvc: wl,
		ActivitySvc:  noopActivity{},
	})
	return svc.(*Service), repo, wl
}

func createPending(t *testing.T, svc *Service) inspectiondomain.Inspection {
	t.Helper()
	ctx := context.Background()

	inspection, err := svc.Create(ctx, inspectiondomain.CreateInspectionRequest{
		VehicleID:      snowflake.ID(10).String(),
		InspectionDate: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		Results: []inspectiondomain.ResultInput{
			{ItemName: "Front brake pad", Rating: inspectiondomain.RatingRepair},
			{ItemName: "Hydraulic pump", Rating: inspectiondomain.RatingService},
			{ItemName: "Air filter", Rating: inspectiondomain.RatingReplace},
			{ItemName: "Cabin mirror", Rating: inspectiondomain.RatingOK},
		},
		CreatedBy: snowflake.ID(5).String(),
	})
	require.NoError(t, err)

	inspection, err = svc.Submit(ctx, inspection.ID.String(), snowflake.ID(5).String())
	require.NoError(t, err)
	return inspection
}

func TestApproveMaterializesWatchListItems(t *testing.T) {
	svc, _, wl := newTestService(t)
	inspection := createPending(t, svc)

	approved, err := svc.Approve(context.Background(), inspection.ID.String(), snowflake.ID(9).String())
	require.NoError(t, err)
	assert.Equal(t, workflow.StateApproved, approved.Status)

	// repair and service findings only; replace and ok stay off the list.
	require.Len(t, wl.created, 2)
	names := []string{wl.created[0].ItemName, wl.created[1].ItemName}
	assert.Contains(t, names, "Front brake pad")
	assert.Contains(t, names, "Hydraulic pump")
}

func TestApproveRequiresPending(t *testing.T) {
	svc, _, wl := newTestService(t)
	ctx := context.Background()

	inspection, err := svc.Create(ctx, inspectiondomain.CreateInspectionRequest{
		VehicleID:      snowflake.ID(10).String(),
		InspectionDate: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		Results: []inspectiondomain.ResultInput{
			{ItemName: "Front brake pad", Rating: inspectiondomain.RatingRepair},
		},
		CreatedBy: snowflake.ID(5).String(),
	})
	require.NoError(t, err)

	_, err = svc.Approve(ctx, inspection.ID.String(), snowflake.ID(9).String())
	assert.ErrorIs(t, err, workflow.ErrInvalidStateTransition)
	assert.Empty(t, wl.created)
}

func TestSecondApprovalDoesNotDuplicateItems(t *testing.T) {
	svc, _, wl := newTestService(t)
	inspection := createPending(t, svc)
	ctx := context.Background()

	_, err := svc.Approve(ctx, inspection.ID.String(), snowflake.ID(9).String())
	require.NoError(t, err)

	_, err = svc.Approve(ctx, inspection.ID.String(), snowflake.ID(11).String())
	assert.ErrorIs(t, err, workflow.ErrInvalidStateTransition)
	assert.Len(t, wl.created, 2)
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	t.Run("requires results", func(t *testing.T) {
		_, err := svc.Create(ctx, inspectiondomain.CreateInspectionRequest{
			VehicleID:      snowflake.ID(10).String(),
			InspectionDate: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
			CreatedBy:      snowflake.ID(5).String(),
		})
		assert.ErrorIs(t, err, inspectiondomain.ErrInvalidInspection)
	})

	t.Run("rejects unknown rating", func(t *testing.T) {
		_, err := svc.Create(ctx, inspectiondomain.CreateInspectionRequest{
			VehicleID:      snowflake.ID(10).String(),
			InspectionDate: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
			Results: []inspectiondomain.ResultInput{
				{ItemName: "Front brake pad", Rating: "broken"},
			},
			CreatedBy: snowflake.ID(5).String(),
		})
		assert.ErrorIs(t, err, inspectiondomain.ErrInvalidRating)
	})
}
