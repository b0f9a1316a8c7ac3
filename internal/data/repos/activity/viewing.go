package activity

import (
	"context"
	"time"

	types "github.com/yungbote/sportsreel-backend/internal/domain"
	"github.com/yungbote/sportsreel-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type ViewingRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.ViewingRecord) ([]*types.ViewingRecord, error)
	ListSince(ctx context.Context, tx *gorm.DB, userID int64, since time.Time) ([]*types.ViewingRecord, error)
	ListQualifyingForUsers(ctx context.Context, tx *gorm.DB, userIDs []int64, since time.Time, minCompletion float64) ([]*types.ViewingRecord, error)
}

type viewingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewViewingRepo(db *gorm.DB, baseLog *logger.Logger) ViewingRepo {
	repoLog := baseLog.With("repo", "ViewingRepo")
	return &viewingRepo{db: db, log: repoLog}
}

func (r *viewingRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.ViewingRecord) ([]*types.ViewingRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.ViewingRecord{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *viewingRepo) ListSince(ctx context.Context, tx *gorm.DB, userID int64, since time.Time) ([]*types.ViewingRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ViewingRecord
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND created_at >= ?", userID, since.UTC()).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListQualifyingForUsers returns viewing records for the given users at or above
// minCompletion since the given time.
func (r *viewingRepo) ListQualifyingForUsers(ctx context.Context, tx *gorm.DB, userIDs []int64, since time.Time, minCompletion float64) ([]*types.ViewingRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ViewingRecord
	if len(userIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Where("created_at >= ?", since.UTC()).
		Where("completion_percentage >= ?", minCompletion).
		Order("id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
