// Package status holds the pure derived-state calculators for tax
// compliance and service intervals. Nothing here touches storage; the
// scheduler and the entity services feed it stored dates and readings.
package status

import "time"

type TaxState string

const (
	TaxValid        TaxState = "valid"
	TaxExpiringSoon TaxState = "expiring_soon"
	TaxExpired      TaxState = "expired"
	TaxPenalty      TaxState = "penalty"
)

const (
	// DefaultWarningWindowDays is the lead window before expiry in which a
	// period reports expiring_soon.
	DefaultWarningWindowDays = 30
	// DefaultPenaltyGraceDays is the window after expiry before the state
	// escalates from expired to penalty.
	DefaultPenaltyGraceDays = 30
	// DefaultPenaltyGapDays is the inter-period gap (exclusive) beyond which
	// a newly created period carries a penalty.
	DefaultPenaltyGapDays = 30
)

type TaxStatus struct {
	State TaxState
	// DaysRemaining is signed: negative means the period is overdue.
	DaysRemaining int
}

// Tax derives the compliance state of a period ending at endDate as of today,
// using the default warning and grace windows.
func Tax(endDate, today time.Time) TaxStatus {
	return TaxWith(endDate, today, DefaultWarningWindowDays, DefaultPenaltyGraceDays)
}

// TaxWith derives the compliance state with explicit windows.
func TaxWith(endDate, today time.Time, warningWindowDays, graceDays int) TaxStatus {
	days := DaysBetween(today, endDate)

	switch {
	case days > warningWindowDays:
		return TaxStatus{State: TaxValid, DaysRemaining: days}
	case days > 0:
		return TaxStatus{State: TaxExpiringSoon, DaysRemaining: days}
	case days >= -graceDays:
		return TaxStatus{State: TaxExpired, DaysRemaining: days}
	default:
		return TaxStatus{State: TaxPenalty, DaysRemaining: days}
	}
}

// PenaltyGap reports whether the gap between the previous period's end and
// the new period's start exceeds thresholdDays. The boundary is exclusive:
// a gap of exactly thresholdDays incurs no penalty.
func PenaltyGap(prevEnd, newStart time.Time, thresholdDays int) bool {
	return DaysBetween(prevEnd, newStart) > thresholdDays
}

// DaysBetween returns whole calendar days from a to b, negative when b is
// before a. Both instants are truncated to their UTC date first so the time
// of day a job runs at does not shift the result.
func DaysBetween(a, b time.Time) int {
	ad := truncateToDate(a)
	bd := truncateToDate(b)
	return int(bd.Sub(ad).Hours() / 24)
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
