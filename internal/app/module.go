package app

import (
	"time"

	"github.com/code-root/AdvancedCouponSystem-sub002/internal/app/api/server"
	"github.com/code-root/AdvancedCouponSystem-sub002/internal/app/service/notify"
	"github.com/code-root/AdvancedCouponSystem-sub002/internal/app/service/planlimit"
	"github.com/code-root/AdvancedCouponSystem-sub002/internal/app/service/statistics"
	"github.com/code-root/AdvancedCouponSystem-sub002/internal/app/service/subscription"
	"github.com/code-root/AdvancedCouponSystem-sub002/internal/app/service/sync"
	"github.com/code-root/AdvancedCouponSystem-sub002/internal/app/service/usage"
	"github.com/code-root/AdvancedCouponSystem-sub002/internal/platform/db"
	"github.com/code-root/AdvancedCouponSystem-sub002/pkg/config"
	"github.com/code-root/AdvancedCouponSystem-sub002/pkg/logger"

	"go.uber.org/fx"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	server.Module,
	usage.Module,
	planlimit.Module,
	notify.Module,
	subscription.Module,
	sync.Module,
	statistics.Module,
)
