package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/sportsreel-backend/internal/data/repos"
	"github.com/yungbote/sportsreel-backend/internal/data/repos/testutil"
	"github.com/yungbote/sportsreel-backend/internal/jobs/worker"
	"github.com/yungbote/sportsreel-backend/internal/modules/recommend"
	"github.com/yungbote/sportsreel-backend/internal/platform/cachestore"
)

type stubInference struct {
	reply string
	err   error
}

func (s stubInference) Complete(ctx context.Context, prompt string) (string, error) {
	return s.reply, s.err
}

type fixture struct {
	ctx          context.Context
	db           *gorm.DB
	repos        repos.Repos
	cache        *recommend.CacheCoordinator
	pool         *worker.Pool
	recs         RecommendationService
	interactions InteractionService
}

func newFixture(t *testing.T, poolCfg worker.Config, start bool) *fixture {
	t.Helper()
	log := testutil.Logger(t)
	gdb := testutil.DB(t)
	store, err := cachestore.NewBadgerStore(log, "")
	if err != nil {
		t.Fatalf("NewBadgerStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	cfg := recommend.DefaultConfig()
	r := repos.New(gdb, log)
	cache := recommend.NewCacheCoordinator(store, log, nil, cfg.BehaviorTTL, cfg.ListTTL)
	orch := recommend.NewOrchestrator(cfg, r, cache, stubInference{err: errors.New("offline")}, log, nil)

	pool := worker.NewPool(poolCfg, log, nil)
	if start {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			_ = pool.Serve(ctx)
			close(done)
		}()
		t.Cleanup(func() {
			cancel()
			select {
			case <-done:
			case <-time.After(5 * time.Second):
				t.Errorf("pool did not stop")
			}
		})
	}

	return &fixture{
		ctx:          context.Background(),
		db:           gdb,
		repos:        r,
		cache:        cache,
		pool:         pool,
		recs:         NewRecommendationService(log, orch, cache, r, pool, nil),
		interactions: NewInteractionService(gdb, log, r, cache, pool),
	}
}
