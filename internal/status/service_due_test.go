package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fptr(v float64) *float64 { return &v }

func TestServiceDue_MajorWarningZone(t *testing.T) {
	iv := Intervals{Minor: 250, Major: 500, WarningThreshold: 50}

	// current=480, last_minor=250, last_major=0: since_major=480 is inside
	// the major warning zone (450..500) even though the minor interval is ok.
	got := ServiceDue(iv, fptr(480), 250, 0)
	assert.Equal(t, ServiceDueSoon, got.State)
	assert.Equal(t, IntervalMajor, got.Interval)
	assert.InDelta(t, 20, got.Remaining, 0.001)
}

func TestServiceDue_MajorOverdueAtBoundary(t *testing.T) {
	iv := Intervals{Minor: 250, Major: 500, WarningThreshold: 50}

	got := ServiceDue(iv, fptr(500), 250, 0)
	assert.Equal(t, ServiceOverdue, got.State)
	assert.Equal(t, IntervalMajor, got.Interval)
	assert.InDelta(t, 0, got.OverdueBy, 0.001)
}

func TestServiceDue_MajorPriorityOverMinor(t *testing.T) {
	iv := Intervals{Minor: 250, Major: 500, WarningThreshold: 50}

	// Both intervals overdue: the major one wins.
	got := ServiceDue(iv, fptr(600), 100, 0)
	assert.Equal(t, ServiceOverdue, got.State)
	assert.Equal(t, IntervalMajor, got.Interval)
	assert.InDelta(t, 100, got.OverdueBy, 0.001)
}

func TestServiceDue_MinorStates(t *testing.T) {
	iv := Intervals{Minor: 250, Major: 500, WarningThreshold: 50}

	got := ServiceDue(iv, fptr(460), 200, 400)
	assert.Equal(t, ServiceOverdue, got.State)
	assert.Equal(t, IntervalMinor, got.Interval)
	assert.InDelta(t, 10, got.OverdueBy, 0.001)

	got = ServiceDue(iv, fptr(420), 200, 400)
	assert.Equal(t, ServiceDueSoon, got.State)
	assert.Equal(t, IntervalMinor, got.Interval)
	assert.InDelta(t, 30, got.Remaining, 0.001)
}

func TestServiceDue_OK(t *testing.T) {
	iv := Intervals{Minor: 250, Major: 500, WarningThreshold: 50}

	got := ServiceDue(iv, fptr(300), 200, 100)
	assert.Equal(t, ServiceOK, got.State)
}

func TestServiceDue_NoReadingIsUnknown(t *testing.T) {
	iv := Intervals{Minor: 250, Major: 500, WarningThreshold: 50}

	got := ServiceDue(iv, nil, 0, 0)
	assert.Equal(t, ServiceUnknown, got.State)
}
