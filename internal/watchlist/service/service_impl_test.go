package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/haulmatic/fleetguard/internal/activity/domain"
	"github.com/haulmatic/fleetguard/internal/clock"
	watchlistdomain "github.com/haulmatic/fleetguard/internal/watchlist/domain"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeRepo struct {
	items      map[snowflake.ID]*watchlistdomain.WatchListItem
	components []watchlistdomain.Component
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: map[snowflake.ID]*watchlistdomain.WatchListItem{}}
}

func (f *fakeRepo) InsertBatch(ctx context.Context, db *gorm.DB, items []watchlistdomain.WatchListItem) error {
	for i := range items {
		cp := items[i]
		f.items[cp.ID] = &cp
	}
	return nil
}

func (f *fakeRepo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*watchlistdomain.WatchListItem, error) {
	if item, ok := f.items[id]; ok {
		cp := *item
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeRepo) FindActiveByVehicle(ctx context.Context, db *gorm.DB, vehicleID snowflake.ID) ([]watchlistdomain.WatchListItem, error) {
	var out []watchlistdomain.WatchListItem
	for _, item := range f.items {
		if item.VehicleID == vehicleID && item.Status == watchlistdomain.StatusActive {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (f *fakeRepo) MarkResolved(ctx context.Context, db *gorm.DB, id snowflake.ID, jobCardID *snowflake.ID, at time.Time) (bool, error) {
	item, ok := f.items[id]
	if !ok || item.Status != watchlistdomain.StatusActive {
		return false, nil
	}
	item.Status = watchlistdomain.StatusResolved
	t := at
	item.ResolvedAt = &t
	item.ResolvedByJobCard = jobCardID
	item.UpdatedAt = at
	return true, nil
}

func (f *fakeRepo) MarkDisposedByVehicle(ctx context.Context, db *gorm.DB, vehicleID snowflake.ID, at time.Time) (int64, error) {
	var n int64
	for _, item := range f.items {
		if item.VehicleID == vehicleID && item.Status == watchlistdomain.StatusActive {
			item.Status = watchlistdomain.StatusMachineDisposed
			item.UpdatedAt = at
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) ListComponents(ctx context.Context, db *gorm.DB) ([]watchlistdomain.Component, error) {
	return f.components, nil
}

type noopActivity struct{}

func (noopActivity) Record(ctx context.Context, entry activitydomain.Entry) error { return nil }

func newTestService(t *testing.T, repo watchlistdomain.Repository) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	node, err := snowflake.NewNode(5)
	require.NoError(t, err)

	svc := NewService(Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       clock.NewFakeClock(time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)),
		Repo:        repo,
		ActivitySvc: noopActivity{},
	})
	return svc.(*Service)
}

func TestCreateFromFindings(t *testing.T) {
	repo := newFakeRepo()
	repo.components = []watchlistdomain.Component{
		{ID: 1, Name: "Brake"},
		{ID: 2, Name: "Brake Pad"},
		{ID: 3, Name: "Hydraulic Pump"},
	}
	svc := newTestService(t, repo)
	vehicleID := snowflake.ID(10)

	items, err := svc.CreateFromFindings(context.Background(), nil, vehicleID, []watchlistdomain.Finding{
		{InspectionResultID: 100, ItemName: "Front brake pad", Rating: "repair"},
		{InspectionResultID: 101, ItemName: "Cabin mirror", Rating: "service"},
	})
	require.NoError(t, err)
	require.Len(t, items, 2)

	t.Run("longest matching component wins", func(t *testing.T) {
		require.NotNil(t, items[0].ComponentID)
		assert.Equal(t, snowflake.ID(2), *items[0].ComponentID)
	})

	t.Run("no match leaves component null", func(t *testing.T) {
		assert.Nil(t, items[1].ComponentID)
	})

	t.Run("items start active with the rating copied", func(t *testing.T) {
		assert.Equal(t, watchlistdomain.StatusActive, items[0].Status)
		assert.Equal(t, "repair", items[0].RatingAtCreation)
	})
}

func TestResolveIdempotence(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)
	ctx := context.Background()

	itemID := snowflake.ID(50)
	repo.items[itemID] = &watchlistdomain.WatchListItem{
		ID:        itemID,
		VehicleID: 10,
		ItemName:  "Front brake pad",
		Status:    watchlistdomain.StatusActive,
	}

	jobCardID := snowflake.ID(200)
	resolved, err := svc.Resolve(ctx, itemID.String(), &jobCardID)
	require.NoError(t, err)
	assert.Equal(t, watchlistdomain.StatusResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedByJobCard)
	assert.Equal(t, jobCardID, *resolved.ResolvedByJobCard)

	_, err = svc.Resolve(ctx, itemID.String(), &jobCardID)
	assert.ErrorIs(t, err, watchlistdomain.ErrItemNotActive)
}

func TestBatchResolvePartialSuccess(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)
	ctx := context.Background()
	vehicleID := snowflake.ID(10)

	repo.items[1] = &watchlistdomain.WatchListItem{ID: 1, VehicleID: vehicleID, Status: watchlistdomain.StatusActive}
	repo.items[2] = &watchlistdomain.WatchListItem{ID: 2, VehicleID: vehicleID, Status: watchlistdomain.StatusResolved}
	repo.items[3] = &watchlistdomain.WatchListItem{ID: 3, VehicleID: snowflake.ID(99), Status: watchlistdomain.StatusActive}
	repo.items[4] = &watchlistdomain.WatchListItem{ID: 4, VehicleID: vehicleID, Status: watchlistdomain.StatusActive}

	resolved, err := svc.BatchResolve(ctx, nil, vehicleID, snowflake.ID(200), []snowflake.ID{1, 2, 3, 4, 5})
	require.NoError(t, err)
	assert.Equal(t, 2, resolved)

	assert.Equal(t, watchlistdomain.StatusResolved, repo.items[1].Status)
	assert.Equal(t, watchlistdomain.StatusActive, repo.items[3].Status)
}

func TestMarkVehicleDisposed(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)
	vehicleID := snowflake.ID(10)

	repo.items[1] = &watchlistdomain.WatchListItem{ID: 1, VehicleID: vehicleID, Status: watchlistdomain.StatusActive}
	repo.items[2] = &watchlistdomain.WatchListItem{ID: 2, VehicleID: vehicleID, Status: watchlistdomain.StatusResolved}

	n, err := svc.MarkVehicleDisposed(context.Background(), vehicleID.String())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, watchlistdomain.StatusMachineDisposed, repo.items[1].Status)
	assert.Equal(t, watchlistdomain.StatusResolved, repo.items[2].Status)
}
