package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/haulmatic/fleetguard/internal/activity/domain"
	"github.com/haulmatic/fleetguard/internal/clock"
	"github.com/haulmatic/fleetguard/internal/status"
	vehicledomain "github.com/haulmatic/fleetguard/internal/vehicle/domain"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeRepo struct {
	vehicles     map[snowflake.ID]*vehicledomain.Vehicle
	machineTypes map[snowflake.ID]*vehicledomain.MachineType
	readings     []vehicledomain.Reading
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		vehicles:     map[snowflake.ID]*vehicledomain.Vehicle{},
		machineTypes: map[snowflake.ID]*vehicledomain.MachineType{},
	}
}

func (f *fakeRepo) FindVehicleByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*vehicledomain.Vehicle, error) {
	if v, ok := f.vehicles[id]; ok {
		cp := *v
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeRepo) FindVehicleByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*vehicledomain.Vehicle, error) {
	return f.FindVehicleByID(ctx, db, id)
}

func (f *fakeRepo) FindActiveVehicles(ctx context.Context, db *gorm.DB, vehicleID snowflake.ID) ([]vehicledomain.Vehicle, error) {
	var out []vehicledomain.Vehicle
	for _, v := range f.vehicles {
		if v.Status != vehicledomain.VehicleStatusActive {
			continue
		}
		if vehicleID != 0 && v.ID != vehicleID {
			continue
		}
		out = append(out, *v)
	}
	return out, nil
}

func (f *fakeRepo) FindMachineTypeByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*vehicledomain.MachineType, error) {
	if mt, ok := f.machineTypes[id]; ok {
		cp := *mt
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeRepo) InsertMachineType(ctx context.Context, db *gorm.DB, mt *vehicledomain.MachineType) error {
	cp := *mt
	f.machineTypes[mt.ID] = &cp
	return nil
}

func (f *fakeRepo) InsertReading(ctx context.Context, db *gorm.DB, reading *vehicledomain.Reading) error {
	f.readings = append(f.readings, *reading)
	return nil
}

func (f *fakeRepo) UpdateCurrentReading(ctx context.Context, db *gorm.DB, vehicleID snowflake.ID, hours, km *float64, at time.Time) error {
	v := f.vehicles[vehicleID]
	if hours != nil {
		h := *hours
		v.CurrentHours = &h
	}
	if km != nil {
		k := *km
		v.CurrentKM = &k
	}
	t := at
	v.LastReadingAt = &t
	v.UpdatedAt = at
	return nil
}

func (f *fakeRepo) UpdateServiceMarkers(ctx context.Context, db *gorm.DB, vehicleID snowflake.ID, reading float64, date time.Time, major bool) error {
	v := f.vehicles[vehicleID]
	v.LastMinorServiceReading = reading
	d := date
	v.LastMinorServiceDate = &d
	if major {
		v.LastMajorServiceReading = reading
		v.LastMajorServiceDate = &d
	}
	return nil
}

type noopActivity struct{}

func (noopActivity) Record(ctx context.Context, entry activitydomain.Entry) error { return nil }

func newTestService(t *testing.T, repo vehicledomain.Repository) (*Service, *clock.FakeClock) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fc := clock.NewFakeClock(time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC))

	svc := NewService(Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       fc,
		Repo:        repo,
		ActivitySvc: noopActivity{},
	})
	return svc.(*Service), fc
}

func ptr(v float64) *float64 { return &v }

func TestCreateMachineType(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		mt, err := svc.CreateMachineType(ctx, vehicledomain.CreateMachineTypeRequest{
			Name:                 "Excavator 20t",
			TrackingUnit:         vehicledomain.TrackingHours,
			MinorServiceInterval: 250,
			MajorServiceInterval: 500,
			WarningThreshold:     20,
		})
		require.NoError(t, err)
		assert.NotZero(t, mt.ID)
		assert.Equal(t, "Excavator 20t", mt.Name)
		assert.NotNil(t, repo.machineTypes[mt.ID])
	})

	t.Run("major must exceed minor", func(t *testing.T) {
		_, err := svc.CreateMachineType(ctx, vehicledomain.CreateMachineTypeRequest{
			Name:                 "Bad",
			TrackingUnit:         vehicledomain.TrackingHours,
			MinorServiceInterval: 500,
			MajorServiceInterval: 500,
			WarningThreshold:     20,
		})
		assert.ErrorIs(t, err, vehicledomain.ErrInvalidIntervals)
	})

	t.Run("unknown tracking unit", func(t *testing.T) {
		_, err := svc.CreateMachineType(ctx, vehicledomain.CreateMachineTypeRequest{
			Name:                 "Bad",
			TrackingUnit:         "miles",
			MinorServiceInterval: 250,
			MajorServiceInterval: 500,
		})
		assert.ErrorIs(t, err, vehicledomain.ErrInvalidTrackingUnit)
	})
}

func TestCreateReading(t *testing.T) {
	repo := newFakeRepo()
	svc, fc := newTestService(t, repo)
	ctx := context.Background()

	vehicleID := snowflake.ID(100)
	repo.vehicles[vehicleID] = &vehicledomain.Vehicle{
		ID:             vehicleID,
		RegistrationNo: "WP-1234",
		Status:         vehicledomain.VehicleStatusActive,
		CurrentHours:   ptr(480),
	}

	t.Run("rolls current reading forward", func(t *testing.T) {
		reading, err := svc.CreateReading(ctx, vehicledomain.CreateReadingRequest{
			VehicleID:  vehicleID.String(),
			Hours:      ptr(495),
			RecordedBy: snowflake.ID(7).String(),
		})
		require.NoError(t, err)
		assert.Equal(t, fc.Now(), reading.RecordedAt)

		v := repo.vehicles[vehicleID]
		require.NotNil(t, v.CurrentHours)
		assert.Equal(t, 495.0, *v.CurrentHours)
		require.NotNil(t, v.LastReadingAt)
		assert.Equal(t, fc.Now(), *v.LastReadingAt)
		assert.Len(t, repo.readings, 1)
	})

	t.Run("rejects regressed reading", func(t *testing.T) {
		_, err := svc.CreateReading(ctx, vehicledomain.CreateReadingRequest{
			VehicleID:  vehicleID.String(),
			Hours:      ptr(400),
			RecordedBy: snowflake.ID(7).String(),
		})
		assert.ErrorIs(t, err, vehicledomain.ErrReadingRegressed)
		assert.Equal(t, 495.0, *repo.vehicles[vehicleID].CurrentHours)
		assert.Len(t, repo.readings, 1)
	})

	t.Run("equal reading is allowed", func(t *testing.T) {
		_, err := svc.CreateReading(ctx, vehicledomain.CreateReadingRequest{
			VehicleID:  vehicleID.String(),
			Hours:      ptr(495),
			RecordedBy: snowflake.ID(7).String(),
		})
		require.NoError(t, err)
	})

	t.Run("requires a value", func(t *testing.T) {
		_, err := svc.CreateReading(ctx, vehicledomain.CreateReadingRequest{
			VehicleID:  vehicleID.String(),
			RecordedBy: snowflake.ID(7).String(),
		})
		assert.ErrorIs(t, err, vehicledomain.ErrInvalidReading)
	})

	t.Run("unknown vehicle", func(t *testing.T) {
		_, err := svc.CreateReading(ctx, vehicledomain.CreateReadingRequest{
			VehicleID:  snowflake.ID(999).String(),
			Hours:      ptr(10),
			RecordedBy: snowflake.ID(7).String(),
		})
		assert.ErrorIs(t, err, vehicledomain.ErrVehicleNotFound)
	})
}

func TestServiceDue(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	mtID := snowflake.ID(1)
	repo.machineTypes[mtID] = &vehicledomain.MachineType{
		ID:                   mtID,
		Name:                 "Excavator 20t",
		TrackingUnit:         vehicledomain.TrackingHours,
		MinorServiceInterval: 250,
		MajorServiceInterval: 500,
		WarningThreshold:     20,
	}

	vehicleID := snowflake.ID(100)
	repo.vehicles[vehicleID] = &vehicledomain.Vehicle{
		ID:            vehicleID,
		MachineTypeID: mtID,
		Status:        vehicledomain.VehicleStatusActive,
		CurrentHours:  ptr(480),
	}

	t.Run("due soon on major interval", func(t *testing.T) {
		resp, err := svc.ServiceDue(ctx, vehicleID.String())
		require.NoError(t, err)
		assert.Equal(t, status.ServiceDueSoon, resp.Due.State)
		assert.Equal(t, status.IntervalMajor, resp.Due.Interval)
		assert.Equal(t, 20.0, resp.Due.Remaining)
	})

	t.Run("unknown without any reading", func(t *testing.T) {
		blankID := snowflake.ID(101)
		repo.vehicles[blankID] = &vehicledomain.Vehicle{
			ID:            blankID,
			MachineTypeID: mtID,
			Status:        vehicledomain.VehicleStatusActive,
		}
		resp, err := svc.ServiceDue(ctx, blankID.String())
		require.NoError(t, err)
		assert.Equal(t, status.ServiceUnknown, resp.Due.State)
	})

	t.Run("vehicle not found", func(t *testing.T) {
		_, err := svc.ServiceDue(ctx, snowflake.ID(999).String())
		assert.ErrorIs(t, err, vehicledomain.ErrVehicleNotFound)
	})
}
