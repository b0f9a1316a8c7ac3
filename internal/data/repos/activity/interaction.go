package activity

import (
	"context"
	"time"

	types "github.com/yungbote/sportsreel-backend/internal/domain"
	"github.com/yungbote/sportsreel-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type InteractionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Interaction) ([]*types.Interaction, error)
	ListSince(ctx context.Context, tx *gorm.DB, userID int64, since time.Time) ([]*types.Interaction, error)
}

type interactionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInteractionRepo(db *gorm.DB, baseLog *logger.Logger) InteractionRepo {
	repoLog := baseLog.With("repo", "InteractionRepo")
	return &interactionRepo{db: db, log: repoLog}
}

func (r *interactionRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Interaction) ([]*types.Interaction, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.Interaction{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *interactionRepo) ListSince(ctx context.Context, tx *gorm.DB, userID int64, since time.Time) ([]*types.Interaction, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Interaction
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND created_at >= ?", userID, since.UTC()).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
