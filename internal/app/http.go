package app

import (
	"context"

	"github.com/yungbote/sportsreel-backend/internal/data/db"
	apphttp "github.com/yungbote/sportsreel-backend/internal/http"
	httpH "github.com/yungbote/sportsreel-backend/internal/http/handlers"
	httpMW "github.com/yungbote/sportsreel-backend/internal/http/middleware"
	"github.com/yungbote/sportsreel-backend/internal/observability"
	"github.com/yungbote/sportsreel-backend/internal/platform/logger"
)

type Handlers struct {
	Health         *httpH.HealthHandler
	Recommendation *httpH.RecommendationHandler
	Interaction    *httpH.InteractionHandler
}

func wireHandlers(log *logger.Logger, database *db.Service, clients Clients, services Services) Handlers {
	log.Info("Wiring handlers...")
	checks := []httpH.Check{{Name: "database", Fn: database.Ping}}
	if clients.Redis != nil {
		checks = append(checks, httpH.Check{Name: "redis", Fn: func(ctx context.Context) error {
			return clients.Redis.Ping(ctx)
		}})
	}
	return Handlers{
		Health:         httpH.NewHealthHandler(checks...),
		Recommendation: httpH.NewRecommendationHandler(services.Recommendations),
		Interaction:    httpH.NewInteractionHandler(services.Interactions),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, metrics *observability.Metrics) *apphttp.Server {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return apphttp.NewServer(cfg.HTTP.Addr, apphttp.RouterConfig{
		Log:                   log,
		Metrics:               metrics,
		ServiceName:           serviceName,
		AllowedOrigins:        cfg.HTTP.AllowedOrigins,
		AuthMiddleware:        httpMW.NewAuthMiddleware(log, cfg.Auth.JWTSecret),
		HealthHandler:         handlers.Health,
		RecommendationHandler: handlers.Recommendation,
		InteractionHandler:    handlers.Interaction,
	}, cfg.HTTP.ShutdownTimeout)
}
