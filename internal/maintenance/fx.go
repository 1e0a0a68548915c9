package maintenance

import (
	"github.com/haulmatic/fleetguard/internal/maintenance/repository"
	"github.com/haulmatic/fleetguard/internal/maintenance/service"
	"go.uber.org/fx"
)

var Module = fx.Module("maintenance.service",
	fx.Provide(
		repository.NewRepository,
		service.NewService,
	),
)
