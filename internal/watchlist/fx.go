package watchlist

import (
	"github.com/haulmatic/fleetguard/internal/watchlist/repository"
	"github.com/haulmatic/fleetguard/internal/watchlist/service"
	"go.uber.org/fx"
)

var Module = fx.Module("watchlist.service",
	fx.Provide(
		repository.NewRepository,
		service.NewService,
	),
)
