package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/haulmatic/fleetguard/internal/activity/domain"
	"github.com/haulmatic/fleetguard/internal/clock"
	"github.com/haulmatic/fleetguard/internal/config"
	"github.com/haulmatic/fleetguard/internal/status"
	taxdomain "github.com/haulmatic/fleetguard/internal/tax/domain"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeRepo struct {
	periods map[snowflake.ID]taxdomain.TaxPeriod
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{periods: map[snowflake.ID]taxdomain.TaxPeriod{}}
}

func (f *fakeRepo) Insert(ctx context.Context, db *gorm.DB, period *taxdomain.TaxPeriod) error {
	f.periods[period.ID] = *period
	return nil
}

func (f *fakeRepo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*taxdomain.TaxPeriod, error) {
	if p, ok := f.periods[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (f *fakeRepo) FindByVehicle(ctx context.Context, db *gorm.DB, vehicleID snowflake.ID) ([]taxdomain.TaxPeriod, error) {
	var out []taxdomain.TaxPeriod
	for _, p := range f.periods {
		if p.VehicleID == vehicleID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EndDate.After(out[j].EndDate) })
	return out, nil
}

func (f *fakeRepo) FindLatestByVehicle(ctx context.Context, db *gorm.DB, vehicleID snowflake.ID) (*taxdomain.TaxPeriod, error) {
	var latest *taxdomain.TaxPeriod
	for _, p := range f.periods {
		if p.VehicleID != vehicleID || p.Status != taxdomain.PeriodStatusActive {
			continue
		}
		if latest == nil || p.EndDate.After(latest.EndDate) {
			cp := p
			latest = &cp
		}
	}
	return latest, nil
}

func (f *fakeRepo) FindLatestForVehicles(ctx context.Context, db *gorm.DB, vehicleIDs []snowflake.ID) (map[snowflake.ID]taxdomain.TaxPeriod, error) {
	out := map[snowflake.ID]taxdomain.TaxPeriod{}
	for _, id := range vehicleIDs {
		p, _ := f.FindLatestByVehicle(ctx, db, id)
		if p != nil {
			out[id] = *p
		}
	}
	return out, nil
}

type noopActivity struct{}

func (noopActivity) Record(ctx context.Context, entry activitydomain.Entry) error { return nil }

func newTestService(t *testing.T, repo taxdomain.Repository) (*Service, *clock.FakeClock) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	fc := clock.NewFakeClock(time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC))

	svc := NewService(Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       fc,
		Reminders:   config.NewStaticReminderConfigHolder(config.DefaultReminderConfig()),
		Repo:        repo,
		ActivitySvc: noopActivity{},
	})
	return svc.(*Service), fc
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCreatePeriodPenaltyGap(t *testing.T) {
	vehicleID := snowflake.ID(10)
	staffID := snowflake.ID(5)

	cases := []struct {
		name    string
		prevEnd time.Time
		start   time.Time
		penalty bool
	}{
		{"gap of 40 days incurs penalty", date(2024, 1, 1), date(2024, 2, 10), true},
		{"gap of 20 days does not", date(2024, 1, 1), date(2024, 1, 21), false},
		{"gap of exactly 30 days does not", date(2024, 1, 1), date(2024, 1, 31), false},
		{"gap of 31 days does", date(2024, 1, 1), date(2024, 2, 1), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newFakeRepo()
			svc, _ := newTestService(t, repo)
			ctx := context.Background()

			repo.periods[1] = taxdomain.TaxPeriod{
				ID:        1,
				VehicleID: vehicleID,
				StartDate: tc.prevEnd.AddDate(-1, 0, 0),
				EndDate:   tc.prevEnd,
				Status:    taxdomain.PeriodStatusActive,
			}

			view, err := svc.CreatePeriod(ctx, taxdomain.CreatePeriodRequest{
				VehicleID:  vehicleID.String(),
				StartDate:  tc.start,
				EndDate:    tc.start.AddDate(1, 0, 0),
				AmountPaid: 120,
				CreatedBy:  staffID.String(),
			})
			require.NoError(t, err)
			assert.Equal(t, tc.penalty, view.PenaltyIncurred)
		})
	}
}

func TestCreatePeriod(t *testing.T) {
	vehicleID := snowflake.ID(10)
	staffID := snowflake.ID(5)

	t.Run("first period never incurs a penalty", func(t *testing.T) {
		repo := newFakeRepo()
		svc, _ := newTestService(t, repo)

		view, err := svc.CreatePeriod(context.Background(), taxdomain.CreatePeriodRequest{
			VehicleID:  vehicleID.String(),
			StartDate:  date(2024, 1, 1),
			EndDate:    date(2025, 1, 1),
			AmountPaid: 120,
			CreatedBy:  staffID.String(),
		})
		require.NoError(t, err)
		assert.False(t, view.PenaltyIncurred)
		assert.Equal(t, taxdomain.PeriodStatusActive, view.Status)
	})

	t.Run("rejects overlap with the active period", func(t *testing.T) {
		repo := newFakeRepo()
		svc, _ := newTestService(t, repo)

		repo.periods[1] = taxdomain.TaxPeriod{
			ID:        1,
			VehicleID: vehicleID,
			StartDate: date(2024, 1, 1),
			EndDate:   date(2025, 1, 1),
			Status:    taxdomain.PeriodStatusActive,
		}

		_, err := svc.CreatePeriod(context.Background(), taxdomain.CreatePeriodRequest{
			VehicleID:  vehicleID.String(),
			StartDate:  date(2024, 6, 1),
			EndDate:    date(2025, 6, 1),
			AmountPaid: 120,
			CreatedBy:  staffID.String(),
		})
		assert.ErrorIs(t, err, taxdomain.ErrPeriodOverlap)
		assert.Len(t, repo.periods, 1)
	})

	t.Run("rejects end before start", func(t *testing.T) {
		repo := newFakeRepo()
		svc, _ := newTestService(t, repo)

		_, err := svc.CreatePeriod(context.Background(), taxdomain.CreatePeriodRequest{
			VehicleID:  vehicleID.String(),
			StartDate:  date(2024, 6, 1),
			EndDate:    date(2024, 1, 1),
			AmountPaid: 120,
			CreatedBy:  staffID.String(),
		})
		assert.ErrorIs(t, err, taxdomain.ErrInvalidPeriod)
	})
}

func TestCurrentPeriodDerivedStatus(t *testing.T) {
	vehicleID := snowflake.ID(10)
	repo := newFakeRepo()
	svc, fc := newTestService(t, repo)
	ctx := context.Background()

	repo.periods[1] = taxdomain.TaxPeriod{
		ID:        1,
		VehicleID: vehicleID,
		StartDate: date(2023, 3, 22),
		EndDate:   date(2024, 3, 22),
		Status:    taxdomain.PeriodStatusActive,
	}

	t.Run("expiring soon inside the warning window", func(t *testing.T) {
		view, err := svc.CurrentPeriod(ctx, vehicleID.String())
		require.NoError(t, err)
		assert.Equal(t, status.TaxExpiringSoon, view.TaxStatus)
		assert.Equal(t, 7, view.DaysRemaining)
	})

	t.Run("expired within grace, then penalty", func(t *testing.T) {
		fc.SetNow(date(2024, 4, 1))
		view, err := svc.CurrentPeriod(ctx, vehicleID.String())
		require.NoError(t, err)
		assert.Equal(t, status.TaxExpired, view.TaxStatus)
		assert.Equal(t, -10, view.DaysRemaining)

		fc.SetNow(date(2024, 5, 1))
		view, err = svc.CurrentPeriod(ctx, vehicleID.String())
		require.NoError(t, err)
		assert.Equal(t, status.TaxPenalty, view.TaxStatus)
		assert.Equal(t, -40, view.DaysRemaining)
	})

	t.Run("no period", func(t *testing.T) {
		_, err := svc.CurrentPeriod(ctx, snowflake.ID(999).String())
		assert.ErrorIs(t, err, taxdomain.ErrPeriodNotFound)
	})
}
