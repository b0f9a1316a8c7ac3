package reco

import (
	"context"
	"errors"
	"time"

	types "github.com/yungbote/sportsreel-backend/internal/domain"
	"github.com/yungbote/sportsreel-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type RecommendationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Recommendation) ([]*types.Recommendation, error)
	ListRecent(ctx context.Context, tx *gorm.DB, userID int64, limit int) ([]*types.Recommendation, error)
	MarkClicked(ctx context.Context, tx *gorm.DB, userID, videoID int64, at time.Time) (bool, error)
	DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

type recommendationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecommendationRepo(db *gorm.DB, baseLog *logger.Logger) RecommendationRepo {
	repoLog := baseLog.With("repo", "RecommendationRepo")
	return &recommendationRepo{db: db, log: repoLog}
}

func (r *recommendationRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Recommendation) ([]*types.Recommendation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.Recommendation{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *recommendationRepo) ListRecent(ctx context.Context, tx *gorm.DB, userID int64, limit int) ([]*types.Recommendation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Recommendation
	if limit <= 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("recommendation_rank ASC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// MarkClicked flips the most recent unclicked row for (user, video). It reports false
// when there is nothing to flip, including when a concurrent caller won the update.
func (r *recommendationRepo) MarkClicked(ctx context.Context, tx *gorm.DB, userID, videoID int64, at time.Time) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var target types.Recommendation
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND video_id = ? AND was_clicked = ?", userID, videoID, false).
		Order("created_at DESC").
		Order("id DESC").
		First(&target).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	clickedAt := at.UTC()
	res := transaction.WithContext(ctx).
		Model(&types.Recommendation{}).
		Where("id = ? AND was_clicked = ?", target.ID, false).
		Updates(map[string]interface{}{
			"was_clicked": true,
			"clicked_at":  &clickedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *recommendationRepo) DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Where("created_at < ?", cutoff.UTC()).
		Delete(&types.Recommendation{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
