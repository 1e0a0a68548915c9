package vehicle

import (
	"github.com/haulmatic/fleetguard/internal/vehicle/repository"
	"github.com/haulmatic/fleetguard/internal/vehicle/service"
	"go.uber.org/fx"
)

var Module = fx.Module("vehicle.service",
	fx.Provide(
		repository.NewRepository,
		service.NewService,
	),
)
