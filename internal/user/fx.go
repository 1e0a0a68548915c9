package user

import (
	"github.com/haulmatic/fleetguard/internal/user/service"
	"go.uber.org/fx"
)

var Module = fx.Module("user.service",
	fx.Provide(service.NewService),
)
