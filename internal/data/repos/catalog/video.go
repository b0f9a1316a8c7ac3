package catalog

import (
	"context"
	"strings"

	types "github.com/yungbote/sportsreel-backend/internal/domain"
	"github.com/yungbote/sportsreel-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type VideoRepo interface {
	Create(ctx context.Context, tx *gorm.DB, videos []*types.Video) ([]*types.Video, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, videoIDs []int64) ([]*types.Video, error)
	CategoriesByIDs(ctx context.Context, tx *gorm.DB, videoIDs []int64) (map[int64]string, error)
	ListPopular(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Video, error)
	ListPopularByCategory(ctx context.Context, tx *gorm.DB, category string, limit int) ([]*types.Video, error)
}

type videoRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVideoRepo(db *gorm.DB, baseLog *logger.Logger) VideoRepo {
	repoLog := baseLog.With("repo", "VideoRepo")
	return &videoRepo{db: db, log: repoLog}
}

func (r *videoRepo) Create(ctx context.Context, tx *gorm.DB, videos []*types.Video) ([]*types.Video, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(videos) == 0 {
		return []*types.Video{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&videos).Error; err != nil {
		return nil, err
	}
	return videos, nil
}

func (r *videoRepo) GetByIDs(ctx context.Context, tx *gorm.DB, videoIDs []int64) ([]*types.Video, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Video
	if len(videoIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", videoIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *videoRepo) CategoriesByIDs(ctx context.Context, tx *gorm.DB, videoIDs []int64) (map[int64]string, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	out := make(map[int64]string, len(videoIDs))
	if len(videoIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		ID       int64
		Category string
	}
	if err := transaction.WithContext(ctx).
		Model(&types.Video{}).
		Select("id", "category").
		Where("id IN ?", videoIDs).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row.Category
	}
	return out, nil
}

// ListPopular pages the catalog by popularity, most viewed first.
func (r *videoRepo) ListPopular(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Video, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Video
	if limit <= 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Order("view_count DESC").
		Order("id ASC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListPopularByCategory matches category case-insensitively, ignoring surrounding blanks.
func (r *videoRepo) ListPopularByCategory(ctx context.Context, tx *gorm.DB, category string, limit int) ([]*types.Video, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Video
	if limit <= 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("LOWER(TRIM(category)) = LOWER(?)", strings.TrimSpace(category)).
		Order("view_count DESC").
		Order("id ASC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
