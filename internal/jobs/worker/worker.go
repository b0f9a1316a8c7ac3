package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/yungbote/sportsreel-backend/internal/platform/logger"
)

var (
	ErrPoolSaturated = errors.New("worker pool saturated")
	ErrPoolStopped   = errors.New("worker pool stopped")
)

type Config struct {
	Concurrency int `yaml:"concurrency" env:"WORKER_CONCURRENCY" validate:"gte=1"`
	QueueSize   int `yaml:"queue_size" env:"WORKER_QUEUE_SIZE" validate:"gte=1"`
}

func DefaultConfig() Config {
	return Config{Concurrency: 4, QueueSize: 64}
}

// Observer is satisfied by *observability.Metrics.
type Observer interface {
	SetQueueDepth(n int)
	PoolRejected(kind string)
}

type task struct {
	kind string
	run  func(ctx context.Context)
	fail func(err error)
}

// Pool is a fixed-size worker pool with a bounded queue. Submissions never block:
// a full queue is rejected with ErrPoolSaturated.
type Pool struct {
	log         *logger.Logger
	obs         Observer
	concurrency int
	tasks       chan task

	mu      sync.RWMutex
	stopped bool
}

func NewPool(cfg Config, baseLog *logger.Logger, obs Observer) *Pool {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 1
	}
	return &Pool{
		log:         baseLog.With("component", "WorkerPool"),
		obs:         obs,
		concurrency: cfg.Concurrency,
		tasks:       make(chan task, cfg.QueueSize),
	}
}

// Serve runs the workers until ctx is cancelled. Tasks already picked up run to
// completion on a context that ignores the cancellation; queued tasks are failed
// with ErrPoolStopped.
func (p *Pool) Serve(ctx context.Context) error {
	p.mu.Lock()
	p.stopped = false
	p.mu.Unlock()

	p.log.Info("Starting worker pool", "concurrency", p.concurrency, "queue_size", cap(p.tasks))
	taskCtx := context.WithoutCancel(ctx)

	var wg sync.WaitGroup
	for i := 0; i < p.concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			p.runLoop(ctx, taskCtx, workerID)
		}(i + 1)
	}
	wg.Wait()

	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()

	drained := 0
	for {
		select {
		case t := <-p.tasks:
			t.fail(ErrPoolStopped)
			drained++
		default:
			p.setDepth()
			p.log.Info("Worker pool stopped", "drained", drained)
			return ctx.Err()
		}
	}
}

func (p *Pool) runLoop(ctx, taskCtx context.Context, workerID int) {
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-p.tasks:
			p.setDepth()
			t.run(taskCtx)
		}
	}
}

func (p *Pool) enqueue(t task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrPoolStopped
	}
	select {
	case p.tasks <- t:
		p.setDepth()
		return nil
	default:
		if p.obs != nil {
			p.obs.PoolRejected(t.kind)
		}
		p.log.Warn("Worker pool saturated, rejecting task", "kind", t.kind, "queue_size", cap(p.tasks))
		return ErrPoolSaturated
	}
}

func (p *Pool) setDepth() {
	if p.obs != nil {
		p.obs.SetQueueDepth(len(p.tasks))
	}
}

type Stats struct {
	Concurrency int `json:"concurrency"`
	Queued      int `json:"queued"`
	Capacity    int `json:"capacity"`
}

func (p *Pool) Stats() Stats {
	return Stats{Concurrency: p.concurrency, Queued: len(p.tasks), Capacity: cap(p.tasks)}
}

func (p *Pool) String() string { return "worker-pool" }

// Submit enqueues fn and returns a handle for its single result. kind labels the task
// in logs and rejection metrics.
func Submit[T any](p *Pool, kind string, fn func(ctx context.Context) (T, error)) (*Future[T], error) {
	f := newFuture[T]()
	t := task{
		kind: kind,
		run: func(ctx context.Context) {
			defer func() {
				if r := recover(); r != nil {
					p.log.Error("Task panic", "kind", kind, "panic", r)
					var zero T
					f.resolve(zero, &panicError{Val: r})
				}
			}()
			v, err := fn(ctx)
			f.resolve(v, err)
		},
		fail: func(err error) {
			var zero T
			f.resolve(zero, err)
		},
	}
	if err := p.enqueue(t); err != nil {
		return nil, err
	}
	return f, nil
}

type panicError struct{ Val any }

func (e *panicError) Error() string { return fmt.Sprintf("task panic: %v", e.Val) }
