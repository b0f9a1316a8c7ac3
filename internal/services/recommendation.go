package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/yungbote/sportsreel-backend/internal/data/repos"
	types "github.com/yungbote/sportsreel-backend/internal/domain"
	"github.com/yungbote/sportsreel-backend/internal/jobs/worker"
	"github.com/yungbote/sportsreel-backend/internal/modules/recommend"
	"github.com/yungbote/sportsreel-backend/internal/observability"
	"github.com/yungbote/sportsreel-backend/internal/platform/apierr"
	"github.com/yungbote/sportsreel-backend/internal/platform/logger"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

type RecommendationService interface {
	// Get answers from cache when possible, otherwise runs the tier chain on the pool.
	Get(ctx context.Context, userID int64, count int) (*recommend.Result, error)
	// Refresh drops both cache families for the user and regenerates.
	Refresh(ctx context.Context, userID int64, count int) (*recommend.Result, error)
	MarkClicked(ctx context.Context, userID, videoID int64) (bool, error)
	History(ctx context.Context, userID int64, limit int) ([]*types.Recommendation, error)
	CleanupOlderThan(ctx context.Context, days int) (int64, error)
}

type recommendationService struct {
	log     *logger.Logger
	orch    *recommend.Orchestrator
	cache   *recommend.CacheCoordinator
	users   repos.UserRepo
	recs    repos.RecommendationRepo
	pool    *worker.Pool
	metrics *observability.Metrics
	flight  singleflight.Group
}

func NewRecommendationService(
	baseLog *logger.Logger,
	orch *recommend.Orchestrator,
	cache *recommend.CacheCoordinator,
	r repos.Repos,
	pool *worker.Pool,
	metrics *observability.Metrics,
) RecommendationService {
	return &recommendationService{
		log:     baseLog.With("service", "RecommendationService"),
		orch:    orch,
		cache:   cache,
		users:   r.Users,
		recs:    r.Recommendations,
		pool:    pool,
		metrics: metrics,
	}
}

func (s *recommendationService) Get(ctx context.Context, userID int64, count int) (*recommend.Result, error) {
	if userID <= 0 {
		return nil, apierr.BadRequest("invalid_user_id", fmt.Errorf("user id must be positive"))
	}
	if res, ok := s.orch.Cached(ctx, userID, count); ok {
		return res, nil
	}

	key := strconv.FormatInt(userID, 10) + ":" + strconv.Itoa(count)
	ch := s.flight.DoChan(key, func() (any, error) {
		return s.generate(context.WithoutCancel(ctx), userID, count)
	})
	select {
	case r := <-ch:
		if r.Err != nil {
			return nil, mapRecommendErr(r.Err)
		}
		return r.Val.(*recommend.Result), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *recommendationService) Refresh(ctx context.Context, userID int64, count int) (*recommend.Result, error) {
	if userID <= 0 {
		return nil, apierr.BadRequest("invalid_user_id", fmt.Errorf("user id must be positive"))
	}
	s.cache.Invalidate(ctx, userID)
	return s.Get(ctx, userID, count)
}

// generate runs the whole chain as one pool task. A rejected submission, or one drained
// by a stopping pool, is answered synchronously from the trending tier.
func (s *recommendationService) generate(ctx context.Context, userID int64, count int) (*recommend.Result, error) {
	fut, err := worker.Submit(s.pool, "recommend", func(taskCtx context.Context) (*recommend.Result, error) {
		return s.orch.Recommend(taskCtx, userID, count)
	})
	if errors.Is(err, worker.ErrPoolSaturated) || errors.Is(err, worker.ErrPoolStopped) {
		s.log.Warn("Worker pool rejected generation, serving trending", "user_id", userID, "error", err)
		return s.orch.Fallback(ctx, userID, count)
	}
	if err != nil {
		return nil, err
	}
	res, err := fut.Wait(ctx)
	if errors.Is(err, worker.ErrPoolStopped) {
		s.log.Warn("Worker pool stopped before generation ran, serving trending", "user_id", userID)
		return s.orch.Fallback(ctx, userID, count)
	}
	return res, err
}

func (s *recommendationService) MarkClicked(ctx context.Context, userID, videoID int64) (bool, error) {
	if userID <= 0 || videoID <= 0 {
		return false, apierr.BadRequest("invalid_id", fmt.Errorf("user and video ids must be positive"))
	}
	changed, err := s.recs.MarkClicked(ctx, nil, userID, videoID, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("mark clicked: %w", err)
	}
	if changed {
		s.cache.OnRecommendationClicked(ctx, userID)
		s.log.Debug("Recommendation clicked", "user_id", userID, "video_id", videoID)
	}
	return changed, nil
}

func (s *recommendationService) History(ctx context.Context, userID int64, limit int) ([]*types.Recommendation, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if _, err := s.users.GetByID(ctx, nil, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("user_not_found", err)
		}
		return nil, fmt.Errorf("load user %d: %w", userID, err)
	}
	rows, err := s.recs.ListRecent(ctx, nil, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recommendations: %w", err)
	}
	return rows, nil
}

func (s *recommendationService) CleanupOlderThan(ctx context.Context, days int) (int64, error) {
	if days < 1 {
		return 0, apierr.BadRequest("invalid_retention", fmt.Errorf("retention must be at least one day, got %d", days))
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	n, err := s.recs.DeleteOlderThan(ctx, nil, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete recommendations before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	s.metrics.RetentionDeleted(n)
	s.log.Info("Old recommendations removed", "deleted", n, "cutoff", cutoff)
	return n, nil
}

func mapRecommendErr(err error) error {
	if errors.Is(err, recommend.ErrUserNotFound) {
		return apierr.NotFound("user_not_found", err)
	}
	return err
}
