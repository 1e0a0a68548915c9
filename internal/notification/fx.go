package notification

import (
	"github.com/haulmatic/fleetguard/internal/notification/repository"
	"github.com/haulmatic/fleetguard/internal/notification/service"
	"go.uber.org/fx"
)

var Module = fx.Module("notification.service",
	fx.Provide(
		repository.NewRepository,
		service.NewDispatcher,
		service.NewQuery,
	),
)
