package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"github.com/yungbote/sportsreel-backend/internal/platform/logger"
)

type Config struct {
	Enabled  bool   `yaml:"enabled" env:"RETENTION_ENABLED"`
	Schedule string `yaml:"schedule" env:"RETENTION_SCHEDULE" validate:"required"`
	KeepDays int    `yaml:"keep_days" env:"RETENTION_KEEP_DAYS" validate:"gte=1"`
}

func DefaultConfig() Config {
	return Config{Enabled: true, Schedule: "0 3 * * *", KeepDays: 30}
}

// Cleaner is satisfied by services.RecommendationService.
type Cleaner interface {
	CleanupOlderThan(ctx context.Context, days int) (int64, error)
}

// Sweeper deletes old persisted recommendations on a cron schedule. It is a
// suture.Service.
type Sweeper struct {
	cfg     Config
	cleaner Cleaner
	log     *logger.Logger
	now     func() time.Time
}

func NewSweeper(cfg Config, cleaner Cleaner, baseLog *logger.Logger) (*Sweeper, error) {
	if !gronx.New().IsValid(cfg.Schedule) {
		return nil, fmt.Errorf("invalid retention schedule %q", cfg.Schedule)
	}
	if cfg.KeepDays < 1 {
		return nil, fmt.Errorf("retention keep_days must be >= 1, got %d", cfg.KeepDays)
	}
	return &Sweeper{
		cfg:     cfg,
		cleaner: cleaner,
		log:     baseLog.With("component", "RetentionSweeper"),
		now:     time.Now,
	}, nil
}

func (s *Sweeper) Serve(ctx context.Context) error {
	s.log.Info("Retention sweeper started", "schedule", s.cfg.Schedule, "keep_days", s.cfg.KeepDays)
	for {
		next, err := gronx.NextTickAfter(s.cfg.Schedule, s.now(), false)
		if err != nil {
			return fmt.Errorf("next retention tick: %w", err)
		}
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			_, _ = s.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single sweep. Failures are logged and returned; the schedule
// keeps running.
func (s *Sweeper) RunOnce(ctx context.Context) (int64, error) {
	started := s.now()
	n, err := s.cleaner.CleanupOlderThan(ctx, s.cfg.KeepDays)
	if err != nil {
		s.log.Error("Retention sweep failed", "error", err)
		return 0, err
	}
	s.log.Info("Retention sweep finished", "deleted", n, "elapsed_ms", time.Since(started).Milliseconds())
	return n, nil
}

func (s *Sweeper) String() string { return "retention-sweeper" }
