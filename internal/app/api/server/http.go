package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/code-root/AdvancedCouponSystem-sub002/docs"
	"github.com/code-root/AdvancedCouponSystem-sub002/internal/app/api/handlers"
	"github.com/code-root/AdvancedCouponSystem-sub002/internal/app/service/planlimit"
	"github.com/code-root/AdvancedCouponSystem-sub002/internal/app/service/statistics"
	subsvc "github.com/code-root/AdvancedCouponSystem-sub002/internal/app/service/subscription"
	syncsvc "github.com/code-root/AdvancedCouponSystem-sub002/internal/app/service/sync"
	"github.com/code-root/AdvancedCouponSystem-sub002/internal/app/service/usage"
	cfgpkg "github.com/code-root/AdvancedCouponSystem-sub002/pkg/config"

	mw "github.com/code-root/AdvancedCouponSystem-sub002/internal/app/api/middleware"

	metrics "github.com/code-root/AdvancedCouponSystem-sub002/pkg/metrics"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Add request tracing middleware only; request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	return r
}

func registerRoutes(r *gin.Engine, log *zap.SugaredLogger, cfg *cfgpkg.Config,
	sub *subsvc.Service, syncSvc *syncsvc.Service, gate *planlimit.Service,
	usageSvc *usage.Service, stats *statistics.Service) {
	// Prometheus metrics
	if cfg != nil && cfg.MetricsAddr != "" {
		p := metrics.NewPrometheus(metrics.NewPrometheusOptions{
			MetricsList: []*metrics.Metric{metrics.MetricsBusinessProcess},
			ReqCntURLLabelMappingFn: func(c *gin.Context) string {
				if fp := c.FullPath(); fp != "" {
					return fp
				}
				return c.Request.URL.Path
			},
			Logger: log,
		})
		p.SetListenAddress(cfg.MetricsAddr)
		p.Use(r)

		log.Infow("metrics started", "addr", cfg.MetricsAddr)
	}
	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub)
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// User-facing sync, usage and statistics APIs
	apiV1 := r.Group("/api/v1")
	apiV1.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterSyncRoutes(apiV1, syncSvc, gate)
	handlers.RegisterUsageRoutes(apiV1, usageSvc, gate)
	handlers.RegisterStatisticsRoutes(apiV1, stats)

	// Admin APIs behind JWT auth
	admin := apiV1.Group("/admin")
	admin.Use(mw.AdminAuthMiddleware(cfg.Admin.JWTSecret))
	handlers.RegisterAdminSubscriptionRoutes(admin, sub)
	handlers.RegisterAdminScheduleRoutes(admin, syncSvc)
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
