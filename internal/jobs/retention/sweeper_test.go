package retention

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/sportsreel-backend/internal/platform/logger"
)

type fakeCleaner struct {
	calls atomic.Int32
	days  atomic.Int32
	err   error
}

func (f *fakeCleaner) CleanupOlderThan(ctx context.Context, days int) (int64, error) {
	f.calls.Add(1)
	f.days.Store(int32(days))
	if f.err != nil {
		return 0, f.err
	}
	return 3, nil
}

func TestNewSweeperValidates(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"default", DefaultConfig(), true},
		{"bad schedule", Config{Schedule: "every night", KeepDays: 30}, false},
		{"zero days", Config{Schedule: "0 3 * * *", KeepDays: 0}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSweeper(tc.cfg, &fakeCleaner{}, logger.Nop())
			if (err == nil) != tc.ok {
				t.Fatalf("expected ok=%v, got err=%v", tc.ok, err)
			}
		})
	}
}

func TestRunOnceUsesKeepDays(t *testing.T) {
	c := &fakeCleaner{}
	s, err := NewSweeper(Config{Schedule: "0 3 * * *", KeepDays: 14}, c, logger.Nop())
	if err != nil {
		t.Fatalf("NewSweeper: %v", err)
	}
	n, err := s.RunOnce(context.Background())
	if err != nil || n != 3 {
		t.Fatalf("RunOnce: n=%d err=%v", n, err)
	}
	if c.days.Load() != 14 {
		t.Fatalf("expected 14 days, got %d", c.days.Load())
	}

	c.err = errors.New("db down")
	if _, err := s.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected error to propagate")
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	c := &fakeCleaner{}
	s, err := NewSweeper(DefaultConfig(), c, logger.Nop())
	if err != nil {
		t.Fatalf("NewSweeper: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Serve did not return")
	}
	if c.calls.Load() != 0 {
		t.Fatalf("no sweep expected before the first tick")
	}
}
