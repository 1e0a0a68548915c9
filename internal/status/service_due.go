package status

type ServiceState string

const (
	ServiceOK      ServiceState = "ok"
	ServiceDueSoon ServiceState = "due_soon"
	ServiceOverdue ServiceState = "overdue"
	ServiceUnknown ServiceState = "unknown"
)

type IntervalKind string

const (
	IntervalMinor IntervalKind = "minor"
	IntervalMajor IntervalKind = "major"
)

// Intervals are the machine type's service intervals, in the machine's
// tracking unit (hours or kilometers).
type Intervals struct {
	Minor            float64
	Major            float64
	WarningThreshold float64
}

type ServiceDueStatus struct {
	State    ServiceState
	Interval IntervalKind
	// Remaining is the distance left to the interval when due_soon.
	Remaining float64
	// OverdueBy is the distance past the interval when overdue.
	OverdueBy float64
}

// ServiceDue derives a vehicle's service-due state from its current reading
// and the readings at which it was last serviced. The major interval always
// takes priority over the minor one. A nil current reading means the vehicle
// has never reported and the state is unknown.
func ServiceDue(iv Intervals, current *float64, lastMinor, lastMajor float64) ServiceDueStatus {
	if current == nil {
		return ServiceDueStatus{State: ServiceUnknown}
	}

	sinceMinor := *current - lastMinor
	sinceMajor := *current - lastMajor

	switch {
	case sinceMajor >= iv.Major:
		return ServiceDueStatus{State: ServiceOverdue, Interval: IntervalMajor, OverdueBy: sinceMajor - iv.Major}
	case sinceMajor >= iv.Major-iv.WarningThreshold:
		return ServiceDueStatus{State: ServiceDueSoon, Interval: IntervalMajor, Remaining: iv.Major - sinceMajor}
	case sinceMinor >= iv.Minor:
		return ServiceDueStatus{State: ServiceOverdue, Interval: IntervalMinor, OverdueBy: sinceMinor - iv.Minor}
	case sinceMinor >= iv.Minor-iv.WarningThreshold:
		return ServiceDueStatus{State: ServiceDueSoon, Interval: IntervalMinor, Remaining: iv.Minor - sinceMinor}
	default:
		return ServiceDueStatus{State: ServiceOK}
	}
}
