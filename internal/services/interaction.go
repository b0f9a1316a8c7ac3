package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/sportsreel-backend/internal/data/repos"
	types "github.com/yungbote/sportsreel-backend/internal/domain"
	"github.com/yungbote/sportsreel-backend/internal/jobs/worker"
	"github.com/yungbote/sportsreel-backend/internal/modules/recommend"
	"github.com/yungbote/sportsreel-backend/internal/platform/apierr"
	"github.com/yungbote/sportsreel-backend/internal/platform/logger"
)

const maxBatchSize = 200

var interactionTypeRe = regexp.MustCompile(`^[A-Z][A-Z_]{1,31}$`)

var validate = validator.New()

type InteractionInput struct {
	UserID   int64          `json:"user_id" validate:"gt=0"`
	VideoID  int64          `json:"video_id" validate:"gt=0"`
	Type     string         `json:"interaction_type" validate:"required"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type ViewingInput struct {
	UserID               int64   `json:"user_id" validate:"gt=0"`
	VideoID              int64   `json:"video_id" validate:"gt=0"`
	WatchDurationSeconds int     `json:"watch_duration_seconds" validate:"gte=0"`
	CompletionRate       float64 `json:"completion_percentage" validate:"gte=0,lte=1"`
	SkipCount            int     `json:"skip_count" validate:"gte=0"`
	ReplayCount          int     `json:"replay_count" validate:"gte=0"`
}

type InteractionService interface {
	TrackInteraction(ctx context.Context, userID, videoID int64, kind string) error
	TrackInteractionWithMetadata(ctx context.Context, userID, videoID int64, kind string, metadata map[string]any) error
	// TrackViewing stores a viewing record plus a VIEW interaction.
	TrackViewing(ctx context.Context, userID, videoID int64, watchSeconds int, completion float64) error
	// TrackDetailedViewing also keeps skip and replay counts, mirrored into a
	// DETAILED_VIEW interaction's metadata.
	TrackDetailedViewing(ctx context.Context, in ViewingInput) error
	TrackBatch(ctx context.Context, inputs []InteractionInput) (int, error)
}

type interactionService struct {
	db           *gorm.DB
	log          *logger.Logger
	interactions repos.InteractionRepo
	viewings     repos.ViewingRepo
	cache        *recommend.CacheCoordinator
	pool         *worker.Pool
}

func NewInteractionService(db *gorm.DB, baseLog *logger.Logger, r repos.Repos, cache *recommend.CacheCoordinator, pool *worker.Pool) InteractionService {
	return &interactionService{
		db:           db,
		log:          baseLog.With("service", "InteractionService"),
		interactions: r.Interactions,
		viewings:     r.Viewings,
		cache:        cache,
		pool:         pool,
	}
}

func (s *interactionService) TrackInteraction(ctx context.Context, userID, videoID int64, kind string) error {
	return s.TrackInteractionWithMetadata(ctx, userID, videoID, kind, nil)
}

func (s *interactionService) TrackInteractionWithMetadata(ctx context.Context, userID, videoID int64, kind string, metadata map[string]any) error {
	row, err := buildInteraction(InteractionInput{UserID: userID, VideoID: videoID, Type: kind, Metadata: metadata}, time.Now().UTC())
	if err != nil {
		return err
	}
	return s.write(ctx, "track_interaction", []int64{userID}, func(ctx context.Context, tx *gorm.DB) error {
		_, err := s.interactions.Create(ctx, tx, []*types.Interaction{row})
		return err
	})
}

func (s *interactionService) TrackViewing(ctx context.Context, userID, videoID int64, watchSeconds int, completion float64) error {
	return s.trackViewing(ctx, ViewingInput{
		UserID:               userID,
		VideoID:              videoID,
		WatchDurationSeconds: watchSeconds,
		CompletionRate:       completion,
	}, false)
}

func (s *interactionService) TrackDetailedViewing(ctx context.Context, in ViewingInput) error {
	return s.trackViewing(ctx, in, true)
}

func (s *interactionService) trackViewing(ctx context.Context, in ViewingInput, detailed bool) error {
	if err := validate.Struct(in); err != nil {
		return apierr.BadRequest("invalid_viewing", err)
	}
	now := time.Now().UTC()
	rec := &types.ViewingRecord{
		UserID:               in.UserID,
		VideoID:              in.VideoID,
		WatchDurationSeconds: in.WatchDurationSeconds,
		CompletionRate:       in.CompletionRate,
		SkipCount:            in.SkipCount,
		ReplayCount:          in.ReplayCount,
		CreatedAt:            now,
	}
	event := InteractionInput{UserID: in.UserID, VideoID: in.VideoID, Type: types.InteractionView}
	if detailed {
		event.Type = types.InteractionDetailedView
		event.Metadata = map[string]any{
			"completion_percentage":  in.CompletionRate,
			"watch_duration_seconds": in.WatchDurationSeconds,
			"skip_count":             in.SkipCount,
			"replay_count":           in.ReplayCount,
		}
	}
	row, err := buildInteraction(event, now)
	if err != nil {
		return err
	}

	return s.write(ctx, "track_viewing", []int64{in.UserID}, func(ctx context.Context, tx *gorm.DB) error {
		if _, err := s.viewings.Create(ctx, tx, []*types.ViewingRecord{rec}); err != nil {
			return err
		}
		_, err := s.interactions.Create(ctx, tx, []*types.Interaction{row})
		return err
	})
}

func (s *interactionService) TrackBatch(ctx context.Context, inputs []InteractionInput) (int, error) {
	if len(inputs) == 0 {
		return 0, nil
	}
	if len(inputs) > maxBatchSize {
		return 0, apierr.BadRequest("batch_too_large", fmt.Errorf("too many interactions (max %d)", maxBatchSize))
	}
	now := time.Now().UTC()
	rows := make([]*types.Interaction, 0, len(inputs))
	users := make([]int64, 0, len(inputs))
	seen := map[int64]struct{}{}
	for i, in := range inputs {
		row, err := buildInteraction(in, now)
		if err != nil {
			return 0, apierr.BadRequest("invalid_interaction", fmt.Errorf("index %d: %w", i, err))
		}
		rows = append(rows, row)
		if _, ok := seen[in.UserID]; !ok {
			seen[in.UserID] = struct{}{}
			users = append(users, in.UserID)
		}
	}
	err := s.write(ctx, "track_batch", users, func(ctx context.Context, tx *gorm.DB) error {
		_, err := s.interactions.Create(ctx, tx, rows)
		return err
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// write runs fn in a transaction on the worker pool and, once committed, invalidates
// the cached digest and list of every affected user.
func (s *interactionService) write(ctx context.Context, kind string, userIDs []int64, fn func(ctx context.Context, tx *gorm.DB) error) error {
	fut, err := worker.Submit(s.pool, kind, func(taskCtx context.Context) (struct{}, error) {
		err := s.db.WithContext(taskCtx).Transaction(func(tx *gorm.DB) error {
			return fn(taskCtx, tx)
		})
		if err != nil {
			return struct{}{}, err
		}
		for _, id := range userIDs {
			s.cache.OnActivityRecorded(taskCtx, id)
		}
		return struct{}{}, nil
	})
	if errors.Is(err, worker.ErrPoolSaturated) || errors.Is(err, worker.ErrPoolStopped) {
		return apierr.Unavailable("worker_pool_busy", err)
	}
	if err != nil {
		return err
	}
	if _, err := fut.Wait(ctx); err != nil {
		return fmt.Errorf("%s: %w", kind, err)
	}
	return nil
}

func buildInteraction(in InteractionInput, now time.Time) (*types.Interaction, error) {
	in.Type = strings.ToUpper(strings.TrimSpace(in.Type))
	if err := validate.Struct(in); err != nil {
		return nil, apierr.BadRequest("invalid_interaction", err)
	}
	if !interactionTypeRe.MatchString(in.Type) {
		return nil, apierr.BadRequest("invalid_interaction_type", fmt.Errorf("invalid interaction type %q", in.Type))
	}
	row := &types.Interaction{
		UserID:    in.UserID,
		VideoID:   in.VideoID,
		Type:      in.Type,
		CreatedAt: now,
	}
	if len(in.Metadata) > 0 {
		raw, err := json.Marshal(in.Metadata)
		if err != nil {
			return nil, apierr.BadRequest("invalid_metadata", err)
		}
		row.Metadata = datatypes.JSON(raw)
	}
	return row, nil
}
