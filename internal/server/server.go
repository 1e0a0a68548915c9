// Package server exposes the HTTP surface: entity CRUD with approval
// workflow operations, status lookups and the notification delivery
// webhook. Authorization happens upstream; handlers trust the declared
// actor and re-validate state-machine legality only.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/haulmatic/fleetguard/internal/activity"
	"github.com/haulmatic/fleetguard/internal/actorctx"
	"github.com/haulmatic/fleetguard/internal/config"
	"github.com/haulmatic/fleetguard/internal/exemption"
	exemptiondomain "github.com/haulmatic/fleetguard/internal/exemption/domain"
	"github.com/haulmatic/fleetguard/internal/inspection"
	inspectiondomain "github.com/haulmatic/fleetguard/internal/inspection/domain"
	"github.com/haulmatic/fleetguard/internal/jobcard"
	jobcarddomain "github.com/haulmatic/fleetguard/internal/jobcard/domain"
	"github.com/haulmatic/fleetguard/internal/maintenance"
	maintenancedomain "github.com/haulmatic/fleetguard/internal/maintenance/domain"
	"github.com/haulmatic/fleetguard/internal/notification"
	notificationdomain "github.com/haulmatic/fleetguard/internal/notification/domain"
	"github.com/haulmatic/fleetguard/internal/providers"
	"github.com/haulmatic/fleetguard/internal/ratelimit"
	"github.com/haulmatic/fleetguard/internal/tax"
	taxdomain "github.com/haulmatic/fleetguard/internal/tax/domain"
	"github.com/haulmatic/fleetguard/internal/user"
	userdomain "github.com/haulmatic/fleetguard/internal/user/domain"
	"github.com/haulmatic/fleetguard/internal/vehicle"
	vehicledomain "github.com/haulmatic/fleetguard/internal/vehicle/domain"
	"github.com/haulmatic/fleetguard/internal/watchlist"
	watchlistdomain "github.com/haulmatic/fleetguard/internal/watchlist/domain"
	"github.com/haulmatic/fleetguard/pkg/log/ctxlogger"
	"github.com/haulmatic/fleetguard/pkg/telemetry/correlation"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	activity.Module,
	vehicle.Module,
	tax.Module,
	exemption.Module,
	maintenance.Module,
	inspection.Module,
	jobcard.Module,
	watchlist.Module,
	user.Module,
	providers.Module,
	ratelimit.Module,
	notification.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(RegisterRoutes),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(correlationMiddleware())
	r.Use(requestLogMiddleware(log))
	r.Use(actorMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

const headerCorrelationID = "X-Correlation-ID"

// correlationMiddleware propagates the caller's correlation id, minting
// one when absent, and echoes it on the response.
func correlationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if cid := c.GetHeader(headerCorrelationID); cid != "" {
			ctx = correlation.ContextWithCorrelationID(ctx, cid)
		}
		ctx, cid := correlation.EnsureCorrelationID(ctx)
		c.Request = c.Request.WithContext(ctx)
		c.Writer.Header().Set(headerCorrelationID, cid)
		c.Next()
	}
}

func requestLogMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ctxlogger.WithContext(c.Request.Context(), log).Info("http.request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

// actorMiddleware lifts the upstream-authenticated actor into the
// context so activity records can attribute changes.
func actorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if actorID := c.GetHeader("X-Actor-ID"); actorID != "" {
			ctx := actorctx.WithActor(c.Request.Context(), actorctx.TypeUser, actorID)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

func run(lc fx.Lifecycle, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine         *gin.Engine
	cfg            config.Config
	log            *zap.Logger
	vehicleSvc     vehicledomain.Service
	taxSvc         taxdomain.Service
	exemptionSvc   exemptiondomain.Service
	maintenanceSvc maintenancedomain.Service
	inspectionSvc  inspectiondomain.Service
	jobCardSvc     jobcarddomain.Service
	watchListSvc   watchlistdomain.Service
	userSvc        userdomain.Service
	dispatcher     notificationdomain.Dispatcher
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	Log            *zap.Logger
	VehicleSvc     vehicledomain.Service
	TaxSvc         taxdomain.Service
	ExemptionSvc   exemptiondomain.Service
	MaintenanceSvc maintenancedomain.Service
	InspectionSvc  inspectiondomain.Service
	JobCardSvc     jobcarddomain.Service
	WatchListSvc   watchlistdomain.Service
	UserSvc        userdomain.Service
	Dispatcher     notificationdomain.Dispatcher
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		log:            p.Log.Named("http"),
		vehicleSvc:     p.VehicleSvc,
		taxSvc:         p.TaxSvc,
		exemptionSvc:   p.ExemptionSvc,
		maintenanceSvc: p.MaintenanceSvc,
		inspectionSvc:  p.InspectionSvc,
		jobCardSvc:     p.JobCardSvc,
		watchListSvc:   p.WatchListSvc,
		userSvc:        p.UserSvc,
		dispatcher:     p.Dispatcher,
	}
}

func RegisterRoutes(s *Server) {
	v1 := s.engine.Group("/v1")

	v1.POST("/machine-types", s.createMachineType)
	v1.GET("/vehicles/:id", s.getVehicle)
	v1.POST("/vehicles/:id/readings", s.createReading)
	v1.GET("/vehicles/:id/service-due", s.serviceDue)

	v1.POST("/vehicles/:id/tax-periods", s.createTaxPeriod)
	v1.GET("/vehicles/:id/tax-periods", s.listTaxPeriods)
	v1.GET("/vehicles/:id/tax-periods/current", s.currentTaxPeriod)
	v1.GET("/tax-periods/:id", s.getTaxPeriod)

	v1.POST("/vehicles/:id/exemptions", s.createExemption)
	v1.GET("/vehicles/:id/exemptions", s.listExemptions)
	v1.GET("/exemptions/:id", s.getExemption)
	v1.POST("/exemptions/:id/end", s.endExemption)
	v1.POST("/exemptions/:id/cancel", s.cancelExemption)

	v1.POST("/service-records", s.createServiceRecord)
	v1.GET("/service-records/:id", s.getServiceRecord)
	v1.GET("/vehicles/:id/service-records", s.listServiceRecords)
	v1.PATCH("/service-records/:id", s.updateServiceRecord)
	v1.DELETE("/service-records/:id", s.deleteServiceRecord)
	v1.POST("/service-records/:id/submit", s.submitServiceRecord)
	v1.POST("/service-records/:id/approve", s.approveServiceRecord)
	v1.POST("/service-records/:id/reject", s.rejectServiceRecord)

	v1.POST("/inspections", s.createInspection)
	v1.GET("/inspections/:id", s.getInspection)
	v1.GET("/vehicles/:id/inspections", s.listInspections)
	v1.POST("/inspections/:id/submit", s.submitInspection)
	v1.POST("/inspections/:id/approve", s.approveInspection)
	v1.POST("/inspections/:id/reject", s.rejectInspection)

	v1.POST("/job-cards", s.createJobCard)
	v1.GET("/job-cards/:id", s.getJobCard)
	v1.GET("/vehicles/:id/job-cards", s.listJobCards)
	v1.POST("/job-cards/:id/submit", s.submitJobCard)
	v1.POST("/job-cards/:id/approve", s.approveJobCard)
	v1.POST("/job-cards/:id/reject", s.rejectJobCard)

	v1.GET("/vehicles/:id/watch-list", s.listWatchList)
	v1.POST("/watch-list/:id/resolve", s.resolveWatchListItem)

	v1.POST("/webhooks/notifications", s.notificationWebhook)
}

func actorID(c *gin.Context) string {
	return c.GetHeader("X-Actor-ID")
}
