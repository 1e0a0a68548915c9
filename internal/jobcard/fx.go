package jobcard

import (
	"github.com/haulmatic/fleetguard/internal/jobcard/repository"
	"github.com/haulmatic/fleetguard/internal/jobcard/service"
	"go.uber.org/fx"
)

var Module = fx.Module("jobcard.service",
	fx.Provide(
		repository.NewRepository,
		service.NewService,
	),
)
