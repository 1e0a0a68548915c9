package sms

import (
	"github.com/haulmatic/fleetguard/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("providers.sms",
	fx.Provide(NewFromConfig),
)

// NewFromConfig falls back to the no-op provider when no gateway is
// configured, so development setups do not attempt network sends.
func NewFromConfig(cfg config.Config) Provider {
	if cfg.SMS.BaseURL == "" {
		return &NoOpProvider{}
	}
	return NewHTTP(Config{
		BaseURL:  cfg.SMS.BaseURL,
		APIKey:   cfg.SMS.APIKey,
		SenderID: cfg.SMS.SenderID,
	})
}
