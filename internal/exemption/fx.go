package exemption

import (
	"github.com/haulmatic/fleetguard/internal/exemption/repository"
	"github.com/haulmatic/fleetguard/internal/exemption/service"
	"go.uber.org/fx"
)

var Module = fx.Module("exemption.service",
	fx.Provide(
		repository.NewRepository,
		service.NewService,
	),
)
