package push

import (
	"github.com/haulmatic/fleetguard/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("providers.push",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config) Provider {
	if cfg.Push.BaseURL == "" {
		return &NoOpProvider{}
	}
	return NewHTTP(Config{
		BaseURL:   cfg.Push.BaseURL,
		ServerKey: cfg.Push.ServerKey,
	})
}
