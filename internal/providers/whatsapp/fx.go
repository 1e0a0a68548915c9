package whatsapp

import (
	"github.com/haulmatic/fleetguard/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("providers.whatsapp",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config) Provider {
	if cfg.WhatsApp.BaseURL == "" {
		return &NoOpProvider{}
	}
	return NewHTTP(Config{
		BaseURL:     cfg.WhatsApp.BaseURL,
		AccessToken: cfg.WhatsApp.AccessToken,
		PhoneID:     cfg.WhatsApp.PhoneID,
	})
}
