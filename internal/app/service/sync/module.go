package sync

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/code-root/AdvancedCouponSystem-sub002/pkg/config"
)

// registerConfiguredAdapters populates the registry from config: one REST
// adapter per enabled network entry.
func registerConfiguredAdapters(cfg *config.Config, registry *Registry, log *zap.SugaredLogger) {
	for _, nc := range cfg.Networks {
		if !nc.Enabled {
			continue
		}
		registry.Register(NewRESTAdapter(nc))
		log.Infow("network adapter registered", "network", nc.Name)
	}
}

// Module exposes the sync orchestrator and adapter registry via Fx.
var Module = fx.Options(
	fx.Provide(NewRegistry),
	fx.Provide(NewService),
	fx.Invoke(registerConfiguredAdapters),
)
