// Package scheduler runs the daily compliance jobs: tax reminders,
// exemption reminders and the expired-exemption sweep. Jobs are
// idempotent per run; an external cron (or RunForever) triggers them.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/haulmatic/fleetguard/internal/activity/domain"
	"github.com/haulmatic/fleetguard/internal/actorctx"
	"github.com/haulmatic/fleetguard/internal/clock"
	"github.com/haulmatic/fleetguard/internal/config"
	exemptiondomain "github.com/haulmatic/fleetguard/internal/exemption/domain"
	notificationdomain "github.com/haulmatic/fleetguard/internal/notification/domain"
	obsmetrics "github.com/haulmatic/fleetguard/internal/observability/metrics"
	"github.com/haulmatic/fleetguard/internal/ratelimit"
	taxdomain "github.com/haulmatic/fleetguard/internal/tax/domain"
	userdomain "github.com/haulmatic/fleetguard/internal/user/domain"
	vehicledomain "github.com/haulmatic/fleetguard/internal/vehicle/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	JobTaxReminders       = "tax_reminders"
	JobExemptionReminders = "exemption_reminders"
	JobExpiredExemptions  = "expired_exemptions"
)

var ErrInvalidConfig = errors.New("scheduler: invalid configuration")

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	Reminders     *config.ReminderConfigHolder
	VehicleRepo   vehicledomain.Repository
	TaxRepo       taxdomain.Repository
	ExemptionRepo exemptiondomain.Repository
	UserSvc       userdomain.Service
	Dispatcher    notificationdomain.Dispatcher
	Query         notificationdomain.Query
	ActivitySvc   activitydomain.Service
	Locker        *ratelimit.Locker `optional:"true"`
	Config        Config            `optional:"true"`
}

type Scheduler struct {
	db            *gorm.DB
	log           *zap.Logger
	cfg           Config
	genID         *snowflake.Node
	clock         clock.Clock
	reminders     *config.ReminderConfigHolder
	vehicleRepo   vehicledomain.Repository
	taxRepo       taxdomain.Repository
	exemptionRepo exemptiondomain.Repository
	userSvc       userdomain.Service
	dispatcher    notificationdomain.Dispatcher
	query         notificationdomain.Query
	activitySvc   activitydomain.Service
	locks         *runLocks

	vehicleScope snowflake.ID
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.GenID == nil || p.Clock == nil ||
		p.Reminders == nil || p.VehicleRepo == nil || p.TaxRepo == nil ||
		p.ExemptionRepo == nil || p.UserSvc == nil || p.Dispatcher == nil ||
		p.Query == nil || p.ActivitySvc == nil {
		return nil, ErrInvalidConfig
	}
	cfg := p.Config.withDefaults()

	var vehicleScope snowflake.ID
	if cfg.VehicleScope != "" {
		id, err := snowflake.ParseString(cfg.VehicleScope)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("scheduler: invalid vehicle scope %q", cfg.VehicleScope)
		}
		vehicleScope = id
	}
	if cfg.UserScope != "" {
		if _, err := snowflake.ParseString(cfg.UserScope); err != nil {
			return nil, fmt.Errorf("scheduler: invalid user scope %q", cfg.UserScope)
		}
	}

	return &Scheduler{
		db:            p.DB,
		log:           p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:           cfg,
		genID:         p.GenID,
		clock:         p.Clock,
		reminders:     p.Reminders,
		vehicleRepo:   p.VehicleRepo,
		taxRepo:       p.TaxRepo,
		exemptionRepo: p.ExemptionRepo,
		userSvc:       p.UserSvc,
		dispatcher:    p.Dispatcher,
		query:         p.Query,
		activitySvc:   p.ActivitySvc,
		locks:         newRunLocks(p.Locker),
		vehicleScope:  vehicleScope,
	}, nil
}

func (s *Scheduler) runJob(
	parent context.Context,
	name string,
	fn func(ctx context.Context) error,
) error {
	release, acquired, lockErr := s.locks.acquire(parent, name, s.cfg.LockTTL)
	if lockErr != nil {
		// A broken lock backend should not stop reminders going out.
		s.log.Warn("run lock unavailable, proceeding without it",
			zap.String("job", name),
			zap.Error(lockErr),
		)
	} else if !acquired {
		s.log.Info("job already running elsewhere, skipping",
			zap.String("job", name),
		)
		obsmetrics.Scheduler().IncJobSkipped(name)
		return nil
	}
	if release != nil {
		defer release()
	}

	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	ctx = actorctx.WithActor(ctx, actorctx.TypeSystem, "scheduler")
	ctx, run, owner := s.ensureJobRun(ctx, name)
	if owner {
		s.logJobStart(run)
	}
	schedMetrics := obsmetrics.Scheduler()
	schedMetrics.IncJobRun(name)

	err := fn(ctx)
	schedMetrics.ObserveJobDuration(name, time.Since(start))
	if owner {
		if err != nil && run.errorCount == 0 {
			run.IncError()
		}
		s.logJobFinish(run)
	}
	if err == nil {
		return nil
	}

	isTimeout := errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
	if isTimeout {
		schedMetrics.IncJobTimeout(name)
	}
	schedMetrics.IncJobError(name, err)
	if isTimeout {
		s.log.Warn("job timed out",
			zap.String("job", name),
			zap.Duration("timeout", s.cfg.JobTimeout),
			zap.Error(err),
		)
		return nil
	}
	return fmt.Errorf("%s: %w", name, err)
}

// RunOnce executes every enabled job once. Per-item failures are logged
// inside the jobs; returned errors cover storage-level problems only.
func (s *Scheduler) RunOnce(parent context.Context) error {
	jobs := []struct {
		Name string
		Fn   func(context.Context) error
	}{
		{JobTaxReminders, s.TaxRemindersJob},
		{JobExemptionReminders, s.ExemptionRemindersJob},
		{JobExpiredExemptions, s.ExpiredExemptionsJob},
	}

	var err error
	for _, job := range jobs {
		if !s.isJobEnabled(job.Name) {
			continue
		}
		err = errors.Join(err, s.runJob(parent, job.Name, job.Fn))
	}
	return err
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) isJobEnabled(jobName string) bool {
	if len(s.cfg.EnabledJobs) == 0 {
		return true
	}
	for _, enabled := range s.cfg.EnabledJobs {
		if strings.EqualFold(enabled, jobName) {
			return true
		}
	}
	return false
}
