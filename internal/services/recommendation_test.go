package services

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/yungbote/sportsreel-backend/internal/data/repos/testutil"
	types "github.com/yungbote/sportsreel-backend/internal/domain"
	"github.com/yungbote/sportsreel-backend/internal/jobs/worker"
	"github.com/yungbote/sportsreel-backend/internal/modules/recommend"
	"github.com/yungbote/sportsreel-backend/internal/platform/apierr"
)

func TestGetFallsThroughToTrending(t *testing.T) {
	f := newFixture(t, worker.DefaultConfig(), true)
	u := testutil.SeedUser(t, f.ctx, f.db, "NBA")
	a := testutil.SeedVideo(t, f.ctx, f.db, "A", "NBA", 100)

	res, err := f.recs.Get(f.ctx, u.ID, 5)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if res.Algorithm != types.AlgorithmTrending || len(res.Items) != 1 || res.Items[0].VideoID != a.ID {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestGetUnknownUserIsNotFound(t *testing.T) {
	f := newFixture(t, worker.DefaultConfig(), true)
	_, err := f.recs.Get(f.ctx, 777, 5)
	if !errors.Is(err, recommend.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if apierr.From(err).Status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", apierr.From(err).Status)
	}
}

func TestGetWithStoppedPoolServesTrending(t *testing.T) {
	f := newFixture(t, worker.DefaultConfig(), false)
	u := testutil.SeedUser(t, f.ctx, f.db, "NBA")
	testutil.SeedVideo(t, f.ctx, f.db, "A", "NBA", 100)

	// The pool is never started, so fillers stay queued.
	for i := 0; i < worker.DefaultConfig().QueueSize; i++ {
		if _, err := worker.Submit(f.pool, "filler", func(ctx context.Context) (int, error) { return 0, nil }); err != nil {
			t.Fatalf("filler %d: %v", i, err)
		}
	}

	res, err := f.recs.Get(f.ctx, u.ID, 5)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if res.Algorithm != types.AlgorithmTrending || len(res.Items) != 1 {
		t.Fatalf("expected synchronous trending answer, got %+v", res)
	}
}

func TestGetDuringPoolShutdownServesTrending(t *testing.T) {
	f := newFixture(t, worker.Config{Concurrency: 1, QueueSize: 4}, false)
	u := testutil.SeedUser(t, f.ctx, f.db, "NBA")
	testutil.SeedVideo(t, f.ctx, f.db, "A", "NBA", 100)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = f.pool.Serve(ctx)
		close(done)
	}()

	started := make(chan struct{})
	release := make(chan struct{})
	if _, err := worker.Submit(f.pool, "blocker", func(ctx context.Context) (int, error) {
		close(started)
		<-release
		return 0, nil
	}); err != nil {
		t.Fatalf("blocker: %v", err)
	}
	<-started

	type outcome struct {
		res *recommend.Result
		err error
	}
	out := make(chan outcome, 1)
	go func() {
		res, err := f.recs.Get(f.ctx, u.ID, 5)
		out <- outcome{res: res, err: err}
	}()

	deadline := time.Now().Add(5 * time.Second)
	for f.pool.Stats().Queued != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("generation was never queued")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// The queued generation is either drained with ErrPoolStopped or picked up by the
	// worker on its way out; both must answer from trending.
	cancel()
	close(release)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("pool did not stop")
	}

	select {
	case o := <-out:
		if o.err != nil {
			t.Fatalf("Get: %v", o.err)
		}
		if o.res.Algorithm != types.AlgorithmTrending || len(o.res.Items) != 1 {
			t.Fatalf("expected trending answer, got %+v", o.res)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Get did not return")
	}
}

func TestGetServesCachedList(t *testing.T) {
	f := newFixture(t, worker.DefaultConfig(), true)
	u := testutil.SeedUser(t, f.ctx, f.db, "NBA")
	f.cache.PutList(f.ctx, u.ID, 5, []int64{9, 8})

	res, err := f.recs.Get(f.ctx, u.ID, 5)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !res.Cached || len(res.Items) != 2 || res.Items[1].Rank != 2 {
		t.Fatalf("expected cached list, got %+v", res)
	}

	if _, err := f.recs.Refresh(f.ctx, u.ID, 5); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if _, ok := f.cache.List(f.ctx, u.ID); ok {
		t.Fatalf("refresh must drop the cached list (trending lists are not cached)")
	}
}

func TestConcurrentGetsShareOneGeneration(t *testing.T) {
	f := newFixture(t, worker.DefaultConfig(), true)
	u := testutil.SeedUser(t, f.ctx, f.db, "NBA")
	testutil.SeedVideo(t, f.ctx, f.db, "A", "NBA", 100)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.recs.Get(f.ctx, u.ID, 5); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("Get: %v", err)
	}
}

func TestMarkClickedIsIdempotent(t *testing.T) {
	f := newFixture(t, worker.DefaultConfig(), true)
	u := testutil.SeedUser(t, f.ctx, f.db, "NBA")
	v := testutil.SeedVideo(t, f.ctx, f.db, "A", "NBA", 100)
	testutil.SeedRecommendation(t, f.ctx, f.db, u.ID, v.ID, 1, time.Now())
	f.cache.PutList(f.ctx, u.ID, 5, []int64{v.ID})

	changed, err := f.recs.MarkClicked(f.ctx, u.ID, v.ID)
	if err != nil || !changed {
		t.Fatalf("first click: changed=%v err=%v", changed, err)
	}
	if _, ok := f.cache.List(f.ctx, u.ID); ok {
		t.Fatalf("expected list cache dropped after click")
	}

	f.cache.PutList(f.ctx, u.ID, 5, []int64{v.ID})
	changed, err = f.recs.MarkClicked(f.ctx, u.ID, v.ID)
	if err != nil || changed {
		t.Fatalf("second click: changed=%v err=%v", changed, err)
	}
	if _, ok := f.cache.List(f.ctx, u.ID); !ok {
		t.Fatalf("no-op click must leave the cache alone")
	}

	rows, err := f.recs.History(f.ctx, u.ID, 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(rows) != 1 || !rows[0].WasClicked || rows[0].ClickedAt == nil {
		t.Fatalf("unexpected history %+v", rows)
	}
}

func TestHistoryUnknownUser(t *testing.T) {
	f := newFixture(t, worker.DefaultConfig(), true)
	if _, err := f.recs.History(f.ctx, 31337, 10); apierr.From(err).Status != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestCleanupOlderThan(t *testing.T) {
	f := newFixture(t, worker.DefaultConfig(), true)
	u := testutil.SeedUser(t, f.ctx, f.db, "NBA")
	v := testutil.SeedVideo(t, f.ctx, f.db, "A", "NBA", 100)
	testutil.SeedRecommendation(t, f.ctx, f.db, u.ID, v.ID, 1, time.Now().AddDate(0, 0, -45))
	testutil.SeedRecommendation(t, f.ctx, f.db, u.ID, v.ID, 1, time.Now().AddDate(0, 0, -1))

	n, err := f.recs.CleanupOlderThan(f.ctx, 30)
	if err != nil {
		t.Fatalf("CleanupOlderThan: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 deleted, got %d", n)
	}
	if _, err := f.recs.CleanupOlderThan(f.ctx, 0); apierr.From(err).Status != http.StatusBadRequest {
		t.Fatalf("expected 400 for zero days, got %v", err)
	}
}
