package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/sportsreel-backend/internal/data/repos"
	"github.com/yungbote/sportsreel-backend/internal/jobs/worker"
	"github.com/yungbote/sportsreel-backend/internal/modules/recommend"
	"github.com/yungbote/sportsreel-backend/internal/observability"
	"github.com/yungbote/sportsreel-backend/internal/platform/logger"
	"github.com/yungbote/sportsreel-backend/internal/services"
)

type Services struct {
	Pool            *worker.Pool
	Cache           *recommend.CacheCoordinator
	Orchestrator    *recommend.Orchestrator
	Recommendations services.RecommendationService
	Interactions    services.InteractionService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r repos.Repos, clients Clients, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")
	pool := worker.NewPool(cfg.Worker, log, metrics)
	cache := recommend.NewCacheCoordinator(clients.Store, log, metrics, cfg.Recommend.BehaviorTTL, cfg.Recommend.ListTTL)

	orch := recommend.NewOrchestrator(cfg.Recommend, r, cache, clients.Inference, log, metrics)

	return Services{
		Pool:            pool,
		Cache:           cache,
		Orchestrator:    orch,
		Recommendations: services.NewRecommendationService(log, orch, cache, r, pool, metrics),
		Interactions:    services.NewInteractionService(db, log, r, cache, pool),
	}
}
