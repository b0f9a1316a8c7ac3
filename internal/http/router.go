package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/sportsreel-backend/internal/http/handlers"
	httpMW "github.com/yungbote/sportsreel-backend/internal/http/middleware"
	"github.com/yungbote/sportsreel-backend/internal/observability"
	"github.com/yungbote/sportsreel-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	AllowedOrigins []string

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler         *httpH.HealthHandler
	RecommendationHandler *httpH.RecommendationHandler
	InteractionHandler    *httpH.InteractionHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	auth := cfg.AuthMiddleware
	if auth == nil {
		auth = httpMW.NewAuthMiddleware(logger.Nop(), "")
	}

	api := r.Group("/api")
	users := api.Group("/users/:userID", auth.RequireSubject("userID"))
	{
		// Recommendations
		if cfg.RecommendationHandler != nil {
			users.GET("/recommendations", cfg.RecommendationHandler.Get)
			users.POST("/recommendations/refresh", cfg.RecommendationHandler.Refresh)
			users.GET("/recommendations/history", cfg.RecommendationHandler.History)
			users.POST("/recommendations/:videoID/click", cfg.RecommendationHandler.Click)
		}

		// Tracking
		if cfg.InteractionHandler != nil {
			users.POST("/interactions", cfg.InteractionHandler.Track)
			users.POST("/viewings", cfg.InteractionHandler.TrackViewing)
		}
	}

	if cfg.InteractionHandler != nil {
		api.POST("/interactions/batch", auth.RequireSubject(""), cfg.InteractionHandler.TrackBatch)
	}

	return r
}
