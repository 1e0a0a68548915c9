package inspection

import (
	"github.com/haulmatic/fleetguard/internal/inspection/repository"
	"github.com/haulmatic/fleetguard/internal/inspection/service"
	"go.uber.org/fx"
)

var Module = fx.Module("inspection.service",
	fx.Provide(
		repository.NewRepository,
		service.NewService,
	),
)
