package notify

import "go.uber.org/fx"

// Module exposes the notification bus via Fx.
var Module = fx.Options(
	fx.Provide(NewBus),
)
