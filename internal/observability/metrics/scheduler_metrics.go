// Package metrics exposes prometheus instrumentation for the reminder
// scheduler.
package metrics

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/haulmatic/fleetguard/internal/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

const (
	SchedulerErrorTypeDeadlineExceeded = "deadline_exceeded"
	SchedulerErrorTypeRateLimit        = "rate_limit"
	SchedulerErrorTypeDB               = "db"
	SchedulerErrorTypeUnknown          = "unknown"
)

// Config carries the constant labels stamped on every scheduler metric.
type Config struct {
	ServiceName string
	Environment string
}

// SchedulerMetrics captures reminder job health signals.
type SchedulerMetrics struct {
	jobRuns       *prometheus.CounterVec
	jobDuration   *prometheus.HistogramVec
	jobTimeouts   *prometheus.CounterVec
	jobErrors     *prometheus.CounterVec
	jobSkipped    *prometheus.CounterVec
	notifications *prometheus.CounterVec
	sweepClosed   prometheus.Counter
}

var (
	schedulerMetricsOnce sync.Once
	schedulerMetrics     *SchedulerMetrics
)

// Scheduler returns the singleton scheduler metrics registry.
func Scheduler() *SchedulerMetrics {
	return SchedulerWithConfig(Config{})
}

// SchedulerWithConfig returns the singleton scheduler metrics registry using
// config labels.
func SchedulerWithConfig(cfg Config) *SchedulerMetrics {
	schedulerMetricsOnce.Do(func() {
		schedulerMetrics = newSchedulerMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return schedulerMetrics
}

// ResetSchedulerMetricsForTest resets the scheduler metrics singleton.
func ResetSchedulerMetricsForTest() {
	schedulerMetricsOnce = sync.Once{}
	schedulerMetrics = nil
}

func newSchedulerMetrics(registerer prometheus.Registerer, cfg Config) *SchedulerMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "fleetguard"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	jobRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "fleetguard_scheduler_job_runs_total",
		Help:        "Scheduler job runs by name.",
		ConstLabels: constLabels,
	}, []string{"job"})

	jobDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "fleetguard_scheduler_job_duration_seconds",
		Help:        "Scheduler job duration by name.",
		ConstLabels: constLabels,
		Buckets:     prometheus.DefBuckets,
	}, []string{"job"})

	jobTimeouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "fleetguard_scheduler_job_timeouts_total",
		Help:        "Scheduler job runs that hit their deadline.",
		ConstLabels: constLabels,
	}, []string{"job"})

	jobErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "fleetguard_scheduler_job_errors_total",
		Help:        "Scheduler job errors by name and type.",
		ConstLabels: constLabels,
	}, []string{"job", "error_type"})

	jobSkipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "fleetguard_scheduler_job_skipped_total",
		Help:        "Scheduler job runs skipped because the run lock was held.",
		ConstLabels: constLabels,
	}, []string{"job"})

	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "fleetguard_scheduler_notifications_total",
		Help:        "Notification outcomes per job.",
		ConstLabels: constLabels,
	}, []string{"job", "outcome"})

	sweepClosed := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "fleetguard_scheduler_exemptions_closed_total",
		Help:        "Expired exemptions transitioned to ended by the sweep.",
		ConstLabels: constLabels,
	})

	collectors := []prometheus.Collector{
		jobRuns, jobDuration, jobTimeouts, jobErrors, jobSkipped,
		notifications, sweepClosed,
	}
	for _, c := range collectors {
		if err := registerer.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if !errors.As(err, &already) {
				panic(err)
			}
		}
	}

	return &SchedulerMetrics{
		jobRuns:       jobRuns,
		jobDuration:   jobDuration,
		jobTimeouts:   jobTimeouts,
		jobErrors:     jobErrors,
		jobSkipped:    jobSkipped,
		notifications: notifications,
		sweepClosed:   sweepClosed,
	}
}

func (m *SchedulerMetrics) IncJobRun(job string) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(job).Inc()
}

func (m *SchedulerMetrics) ObserveJobDuration(job string, duration time.Duration) {
	if m == nil {
		return
	}
	if duration < 0 {
		duration = 0
	}
	m.jobDuration.WithLabelValues(job).Observe(duration.Seconds())
}

func (m *SchedulerMetrics) IncJobTimeout(job string) {
	if m == nil {
		return
	}
	m.jobTimeouts.WithLabelValues(job).Inc()
}

func (m *SchedulerMetrics) IncJobError(job string, err error) {
	if m == nil {
		return
	}
	m.jobErrors.WithLabelValues(job, ClassifySchedulerErrorType(err)).Inc()
}

func (m *SchedulerMetrics) IncJobSkipped(job string) {
	if m == nil {
		return
	}
	m.jobSkipped.WithLabelValues(job).Inc()
}

func (m *SchedulerMetrics) IncNotification(job, outcome string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(job, outcome).Inc()
}

func (m *SchedulerMetrics) IncExemptionClosed() {
	if m == nil {
		return
	}
	m.sweepClosed.Inc()
}

// ClassifySchedulerErrorType buckets job errors for the error counter.
func ClassifySchedulerErrorType(err error) string {
	switch {
	case err == nil:
		return SchedulerErrorTypeUnknown
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return SchedulerErrorTypeDeadlineExceeded
	case errors.Is(err, ratelimit.ErrRateLimited):
		return SchedulerErrorTypeRateLimit
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, gorm.ErrInvalidTransaction):
		return SchedulerErrorTypeDB
	default:
		return SchedulerErrorTypeUnknown
	}
}

// IsSchedulerErrorRetryable reports whether a later run may succeed without
// intervention.
func IsSchedulerErrorRetryable(err error) bool {
	return errors.Is(err, ratelimit.ErrRateLimited) ||
		errors.Is(err, context.DeadlineExceeded)
}
