package recommend

import (
	"context"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/sportsreel-backend/internal/data/repos"
	"github.com/yungbote/sportsreel-backend/internal/data/repos/testutil"
	"github.com/yungbote/sportsreel-backend/internal/platform/cachestore"
)

type fakeInference struct {
	mu      sync.Mutex
	reply   func(prompt string) (string, error)
	prompts []string
}

func (f *fakeInference) Complete(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if f.reply == nil {
		return "", nil
	}
	return f.reply(prompt)
}

func (f *fakeInference) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func (f *fakeInference) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

type harness struct {
	ctx   context.Context
	db    *gorm.DB
	repos repos.Repos
	store *cachestore.BadgerStore
	cache *CacheCoordinator
	ai    *fakeInference
	orch  *Orchestrator
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := testutil.Logger(t)
	gdb := testutil.DB(t)
	store, err := cachestore.NewBadgerStore(log, "")
	if err != nil {
		t.Fatalf("NewBadgerStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	cfg := DefaultConfig()
	r := repos.New(gdb, log)
	cache := NewCacheCoordinator(store, log, nil, cfg.BehaviorTTL, cfg.ListTTL)
	ai := &fakeInference{}
	return &harness{
		ctx:   context.Background(),
		db:    gdb,
		repos: r,
		store: store,
		cache: cache,
		ai:    ai,
		orch:  NewOrchestrator(cfg, r, cache, ai, log, nil),
	}
}

func daysAgo(n int) time.Time {
	return time.Now().UTC().Add(-time.Duration(n) * 24 * time.Hour)
}
