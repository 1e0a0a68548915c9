package providers

import (
	"github.com/haulmatic/fleetguard/internal/providers/email"
	"github.com/haulmatic/fleetguard/internal/providers/push"
	"github.com/haulmatic/fleetguard/internal/providers/sms"
	"github.com/haulmatic/fleetguard/internal/providers/whatsapp"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	email.Module,
	sms.Module,
	whatsapp.Module,
	push.Module,
)
