package planlimit

import "go.uber.org/fx"

// Module exposes the plan-limit gate via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)
