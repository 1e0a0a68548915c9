package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/haulmatic/fleetguard/internal/activity/domain"
	"github.com/haulmatic/fleetguard/internal/clock"
	jobcarddomain "github.com/haulmatic/fleetguard/internal/jobcard/domain"
	watchlistdomain "github.com/haulmatic/fleetguard/internal/watchlist/domain"
	"github.com/haulmatic/fleetguard/internal/workflow"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeRepo struct {
	cards map[snowflake.ID]*jobcarddomain.JobCard
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{cards: map[snowflake.ID]*jobcarddomain.JobCard{}}
}

func (f *fakeRepo) Insert(ctx context.Context, db *gorm.DB, card *jobcarddomain.JobCard) error {
	cp := *card
	f.cards[card.ID] = &cp
	return nil
}

func (f *fakeRepo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*jobcarddomain.JobCard, error) {
	if c, ok := f.cards[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeRepo) FindByVehicle(ctx context.Context, db *gorm.DB, vehicleID snowflake.ID) ([]jobcarddomain.JobCard, error) {
	var out []jobcarddomain.JobCard
	for _, c := range f.cards {
		if c.VehicleID == vehicleID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateWorkflow(ctx context.Context, db *gorm.DB, card *jobcarddomain.JobCard, from workflow.State, updatedAt time.Time) (bool, error) {
	stored, ok := f.cards[card.ID]
	if !ok || stored.Status != from {
		return false, nil
	}
	cp := *card
	cp.UpdatedAt = updatedAt
	f.cards[card.ID] = &cp
	return true, nil
}

type fakeWatchList struct {
	items map[snowflake.ID]*watchlistdomain.WatchListItem
}

func (f *fakeWatchList) CreateFromFindings(ctx context.Context, db *gorm.DB, vehicleID snowflake.ID, findings []watchlistdomain.Finding) ([]watchlistdomain.WatchListItem, error) {
	return nil, nil
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
	resolved := 0
	for _, id := range itemIDs {
		item, ok := f.items[id]
		if !ok || item.VehicleID != vehicleID || item.Status != watchlistdomain.StatusActive {
			continue
		}
		item.Status = watchlistdomain.StatusResolved
		jc := jobCardID
		item.ResolvedByJobCard = &jc
		resolved++
	}
	return resolved, nil
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

	node, err := snowflake.NewNode(7)
	require.NoError(t, err)

	repo := newFakeRepo()
	wl := &fakeWatchList{items: map[snowflake.ID]*watchlistdomain.WatchListItem{}}

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

func createPending(t *testing.T, svc *Service, vehicleID snowflake.ID) jobcarddomain.JobCard {
	t.Helper()
	ctx := context.Background()

	card, err := svc.Create(ctx, jobcarddomain.CreateJobCardRequest{
		VehicleID: vehicleID.String(),
		Title:     "Replace front brake pads",
		Cost:      240,
		CreatedBy: snowflake.ID(5).String(),
	})
	require.NoError(t, err)

	card, err = svc.Submit(ctx, card.ID.String(), snowflake.ID(5).String())
	require.NoError(t, err)
	return card
}

func TestApproveResolvesWatchListItems(t *testing.T) {
	svc, _, wl := newTestService(t)
	vehicleID := snowflake.ID(10)

	wl.items[1] = &watchlistdomain.WatchListItem{ID: 1, VehicleID: vehicleID, Status: watchlistdomain.StatusActive}
	wl.items[2] = &watchlistdomain.WatchListItem{ID: 2, VehicleID: snowflake.ID(99), Status: watchlistdomain.StatusActive}
	wl.items[3] = &watchlistdomain.WatchListItem{ID: 3, VehicleID: vehicleID, Status: watchlistdomain.StatusResolved}

	card := createPending(t, svc, vehicleID)
	result, err := svc.Approve(context.Background(), card.ID.String(), snowflake.ID(9).String(), []string{"1", "2", "3"})
	require.NoError(t, err)

	assert.Equal(t, workflow.StateApproved, result.JobCard.Status)
	assert.Equal(t, 1, result.ItemsResolved)
	assert.Equal(t, watchlistdomain.StatusResolved, wl.items[1].Status)
	require.NotNil(t, wl.items[1].ResolvedByJobCard)
	assert.Equal(t, card.ID, *wl.items[1].ResolvedByJobCard)
	// Wrong-vehicle item untouched.
	assert.Equal(t, watchlistdomain.StatusActive, wl.items[2].Status)
}

func TestApproveWithoutItems(t *testing.T) {
	svc, _, _ := newTestService(t)
	card := createPending(t, svc, snowflake.ID(10))

	result, err := svc.Approve(context.Background(), card.ID.String(), snowflake.ID(9).String(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.ItemsResolved)
}

func TestApproveRequiresPending(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	card, err := svc.Create(ctx, jobcarddomain.CreateJobCardRequest{
		VehicleID: snowflake.ID(10).String(),
		Title:     "Replace front brake pads",
		CreatedBy: snowflake.ID(5).String(),
	})
	require.NoError(t, err)

	_, err = svc.Approve(ctx, card.ID.String(), snowflake.ID(9).String(), nil)
	assert.ErrorIs(t, err, workflow.ErrInvalidStateTransition)
}

func TestRejectThenResubmit(t *testing.T) {
	svc, _, _ := newTestService(t)
	card := createPending(t, svc, snowflake.ID(10))
	ctx := context.Background()

	rejected, err := svc.Reject(ctx, card.ID.String(), snowflake.ID(9).String(), "parts quote missing from the card")
	require.NoError(t, err)
	assert.Equal(t, workflow.StateRejected, rejected.Status)

	resubmitted, err := svc.Submit(ctx, card.ID.String(), snowflake.ID(5).String())
	require.NoError(t, err)
	assert.Equal(t, workflow.StatePending, resubmitted.Status)
}
