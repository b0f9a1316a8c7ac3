package app

import (
	"fmt"
	"time"

	"github.com/yungbote/sportsreel-backend/internal/observability"
	"github.com/yungbote/sportsreel-backend/internal/platform/cachestore"
	"github.com/yungbote/sportsreel-backend/internal/platform/inference"
	"github.com/yungbote/sportsreel-backend/internal/platform/logger"
)

type Clients struct {
	Store     cachestore.Store
	Redis     *cachestore.RedisStore
	Inference inference.Client
}

func wireClients(log *logger.Logger, cfg Config, metrics *observability.Metrics) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	// Cache store
	switch cfg.Cache.Backend {
	case "redis":
		rs, err := cachestore.NewRedisStore(log, cfg.Cache.Redis)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis store: %w", err)
		}
		out.Store, out.Redis = rs, rs
	default:
		bs, err := cachestore.NewBadgerStore(log, cfg.Cache.BadgerDir)
		if err != nil {
			return Clients{}, fmt.Errorf("init badger store: %w", err)
		}
		out.Store = bs
	}

	// Inference. Without a key the inference tier fails fast and the chain falls back.
	if cfg.Inference.APIKey == "" {
		log.Warn("OPENAI_API_KEY not set, inference tier disabled")
		return out, nil
	}
	client, err := inference.New(cfg.Inference, log, func(status string, elapsed time.Duration) {
		metrics.ObserveInference(status, elapsed)
	})
	if err != nil {
		_ = out.Store.Close()
		return Clients{}, fmt.Errorf("init inference client: %w", err)
	}
	out.Inference = client
	return out, nil
}
