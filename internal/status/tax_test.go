package status

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestTax_StateBoundaries(t *testing.T) {
	today := date(2025, 6, 1)

	cases := []struct {
		name string
		end  time.Time
		want TaxState
		days int
	}{
		{"far future is valid", today.AddDate(0, 0, 90), TaxValid, 90},
		{"31 days out is valid", today.AddDate(0, 0, 31), TaxValid, 31},
		{"30 days out is expiring", today.AddDate(0, 0, 30), TaxExpiringSoon, 30},
		{"1 day out is expiring", today.AddDate(0, 0, 1), TaxExpiringSoon, 1},
		{"expires today is expired", today, TaxExpired, 0},
		{"30 days overdue is expired", today.AddDate(0, 0, -30), TaxExpired, -30},
		{"31 days overdue is penalty", today.AddDate(0, 0, -31), TaxPenalty, -31},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Tax(tc.end, today)
			assert.Equal(t, tc.want, got.State)
			assert.Equal(t, tc.days, got.DaysRemaining)
		})
	}
}

func TestTax_ExactlyOneState(t *testing.T) {
	today := date(2025, 6, 1)
	for offset := -60; offset <= 60; offset++ {
		got := Tax(today.AddDate(0, 0, offset), today)
		switch {
		case got.DaysRemaining > 30:
			assert.Equal(t, TaxValid, got.State)
		case got.DaysRemaining > 0:
			assert.Equal(t, TaxExpiringSoon, got.State)
		case got.DaysRemaining >= -30:
			assert.Equal(t, TaxExpired, got.State)
		default:
			assert.Equal(t, TaxPenalty, got.State)
		}
		assert.Equal(t, offset, got.DaysRemaining)
	}
}

func TestTax_TimeOfDayDoesNotShiftDays(t *testing.T) {
	end := date(2025, 6, 8)
	lateEvening := time.Date(2025, 6, 1, 23, 45, 0, 0, time.UTC)

	got := Tax(end, lateEvening)
	assert.Equal(t, 7, got.DaysRemaining)
	assert.Equal(t, TaxExpiringSoon, got.State)
}

func TestPenaltyGap(t *testing.T) {
	prevEnd := date(2025, 1, 31)

	assert.True(t, PenaltyGap(prevEnd, prevEnd.AddDate(0, 0, 40), DefaultPenaltyGapDays))
	assert.False(t, PenaltyGap(prevEnd, prevEnd.AddDate(0, 0, 20), DefaultPenaltyGapDays))
	// Exactly at the threshold does not incur a penalty.
	assert.False(t, PenaltyGap(prevEnd, prevEnd.AddDate(0, 0, 30), DefaultPenaltyGapDays))
	assert.True(t, PenaltyGap(prevEnd, prevEnd.AddDate(0, 0, 31), DefaultPenaltyGapDays))
}
