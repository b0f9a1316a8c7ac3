package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/yungbote/sportsreel-backend/internal/platform/logger"
)

type countingObserver struct {
	mu       sync.Mutex
	rejected map[string]int
}

func (o *countingObserver) SetQueueDepth(int) {}
func (o *countingObserver) PoolRejected(kind string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.rejected == nil {
		o.rejected = map[string]int{}
	}
	o.rejected[kind]++
}

func startPool(t *testing.T, cfg Config, obs Observer) (*Pool, context.CancelFunc, <-chan error) {
	t.Helper()
	p := NewPool(cfg, logger.Nop(), obs)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- p.Serve(ctx) }()
	t.Cleanup(cancel)
	return p, cancel, errc
}

func TestSubmitAndWait(t *testing.T) {
	p, _, _ := startPool(t, Config{Concurrency: 2, QueueSize: 4}, nil)

	f, err := Submit(p, "generate", func(ctx context.Context) (int, error) { return 42, nil })
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	got, err := f.Wait(context.Background())
	if err != nil || got != 42 {
		t.Fatalf("Wait: got %d, %v", got, err)
	}
	if v, done, err := f.Poll(); !done || v != 42 || err != nil {
		t.Fatalf("Poll after completion: %d %v %v", v, done, err)
	}
}

func TestSubmitRejectsWhenSaturated(t *testing.T) {
	obs := &countingObserver{}
	p, _, _ := startPool(t, Config{Concurrency: 1, QueueSize: 1}, obs)

	started := make(chan struct{})
	release := make(chan struct{})
	blocker, err := Submit(p, "generate", func(ctx context.Context) (string, error) {
		close(started)
		<-release
		return "first", nil
	})
	if err != nil {
		t.Fatalf("Submit blocker: %v", err)
	}
	<-started

	queued, err := Submit(p, "generate", func(ctx context.Context) (string, error) { return "second", nil })
	if err != nil {
		t.Fatalf("Submit queued: %v", err)
	}
	if _, done, _ := queued.Poll(); done {
		t.Fatalf("queued task should still be pending")
	}

	if _, err := Submit(p, "track", func(ctx context.Context) (string, error) { return "third", nil }); !errors.Is(err, ErrPoolSaturated) {
		t.Fatalf("expected ErrPoolSaturated, got %v", err)
	}
	if obs.rejected["track"] != 1 {
		t.Fatalf("expected one rejection recorded, got %v", obs.rejected)
	}

	close(release)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if v, err := blocker.Wait(ctx); err != nil || v != "first" {
		t.Fatalf("blocker: %q %v", v, err)
	}
	if v, err := queued.Wait(ctx); err != nil || v != "second" {
		t.Fatalf("queued: %q %v", v, err)
	}
}

func TestSubmitRecoversPanics(t *testing.T) {
	p, _, _ := startPool(t, Config{Concurrency: 1, QueueSize: 1}, nil)

	f, err := Submit(p, "generate", func(ctx context.Context) (int, error) { panic("boom") })
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := f.Wait(context.Background()); err == nil {
		t.Fatalf("expected panic to surface as error")
	}

	// The worker survives the panic.
	f, err = Submit(p, "generate", func(ctx context.Context) (int, error) { return 1, nil })
	if err != nil {
		t.Fatalf("Submit after panic: %v", err)
	}
	if v, err := f.Wait(context.Background()); err != nil || v != 1 {
		t.Fatalf("Wait after panic: %d %v", v, err)
	}
}

func TestWaitHonoursCallerContext(t *testing.T) {
	p, _, _ := startPool(t, Config{Concurrency: 1, QueueSize: 1}, nil)

	release := make(chan struct{})
	defer close(release)
	f, err := Submit(p, "generate", func(ctx context.Context) (int, error) {
		<-release
		return 1, nil
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := f.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestServeStopFailsQueuedAndRejectsNew(t *testing.T) {
	p, cancel, errc := startPool(t, Config{Concurrency: 1, QueueSize: 2}, nil)

	started := make(chan struct{})
	release := make(chan struct{})
	running, err := Submit(p, "generate", func(ctx context.Context) (int, error) {
		close(started)
		<-release
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 7, nil
	})
	if err != nil {
		t.Fatalf("Submit running: %v", err)
	}
	<-started
	queued, err := Submit(p, "generate", func(ctx context.Context) (int, error) { return 8, nil })
	if err != nil {
		t.Fatalf("Submit queued: %v", err)
	}

	cancel()
	close(release)

	select {
	case <-errc:
	case <-time.After(2 * time.Second):
		t.Fatalf("Serve did not return after cancel")
	}

	if v, err := running.Wait(context.Background()); err != nil || v != 7 {
		t.Fatalf("in-flight task should finish on an uncancelled context: %d %v", v, err)
	}
	// The queued task either ran before shutdown or was failed by the drain.
	if v, err := queued.Wait(context.Background()); err != nil && !errors.Is(err, ErrPoolStopped) {
		t.Fatalf("queued: unexpected result %d %v", v, err)
	}
	if _, err := Submit(p, "generate", func(ctx context.Context) (int, error) { return 0, nil }); !errors.Is(err, ErrPoolStopped) {
		t.Fatalf("expected ErrPoolStopped after shutdown, got %v", err)
	}
}
