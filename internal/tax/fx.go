package tax

import (
	"github.com/haulmatic/fleetguard/internal/tax/repository"
	"github.com/haulmatic/fleetguard/internal/tax/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tax.service",
	fx.Provide(
		repository.NewRepository,
		service.NewService,
	),
)
