package activity

import (
	"github.com/haulmatic/fleetguard/internal/activity/service"
	"go.uber.org/fx"
)

var Module = fx.Module("activity.service",
	fx.Provide(service.NewService),
)
