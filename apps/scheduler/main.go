// Standalone reminder scheduler. Runs the same jobs as the monolith's
// embedded loop, with flags for one-shot runs and scoped dry runs so an
// operator can preview exactly what a given day would send.
package main

import (
	"context"
	"flag"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/haulmatic/fleetguard/internal/activity"
	"github.com/haulmatic/fleetguard/internal/clock"
	"github.com/haulmatic/fleetguard/internal/config"
	"github.com/haulmatic/fleetguard/internal/exemption"
	"github.com/haulmatic/fleetguard/internal/notification"
	"github.com/haulmatic/fleetguard/internal/providers"
	"github.com/haulmatic/fleetguard/internal/ratelimit"
	"github.com/haulmatic/fleetguard/internal/scheduler"
	"github.com/haulmatic/fleetguard/internal/tax"
	"github.com/haulmatic/fleetguard/internal/user"
	"github.com/haulmatic/fleetguard/internal/vehicle"
	"github.com/haulmatic/fleetguard/pkg/db"
	"github.com/haulmatic/fleetguard/pkg/log"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	var (
		dryRun    = flag.Bool("dry-run", false, "compute and log, send and write nothing")
		jobs      = flag.String("job", "", "comma-separated job names to run (default all)")
		userID    = flag.String("user", "", "limit to one user id")
		vehicleID = flag.String("vehicle", "", "limit to one vehicle id")
		once      = flag.Bool("once", false, "run each job once and exit")
	)
	flag.Parse()

	cfg := scheduler.Config{
		DryRun:       *dryRun,
		UserScope:    *userID,
		VehicleScope: *vehicleID,
	}
	if *jobs != "" {
		cfg.EnabledJobs = strings.Split(*jobs, ",")
	}

	app := fx.New(
		config.Module,
		log.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		fx.Provide(config.NewReminderConfigHolder),

		// Domain services the jobs read and dispatch through.
		vehicle.Module,
		tax.Module,
		exemption.Module,
		user.Module,
		activity.Module,
		providers.Module,
		ratelimit.Module,
		notification.Module,

		fx.Supply(cfg),
		fx.Provide(scheduler.New),

		fx.Invoke(func(lc fx.Lifecycle, sched *scheduler.Scheduler, logger *zap.Logger, shutdowner fx.Shutdowner) {
			if *once {
				runOnce(lc, sched, logger, shutdowner)
				return
			}
			scheduler.Start(lc, sched)
		}),
	)
	app.Run()
}

// runOnce executes every enabled job a single time. Per-item failures are
// already logged and counted inside each job, so the process still exits
// zero; the error here only means a job could not run at all.
func runOnce(lc fx.Lifecycle, sched *scheduler.Scheduler, logger *zap.Logger, shutdowner fx.Shutdowner) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := sched.RunOnce(context.Background()); err != nil {
					logger.Warn("scheduler run finished with errors", zap.Error(err))
				}
				_ = shutdowner.Shutdown()
			}()
			return nil
		},
	})
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
