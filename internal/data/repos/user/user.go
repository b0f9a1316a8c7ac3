package user

import (
	"context"
	"strings"

	types "github.com/yungbote/sportsreel-backend/internal/domain"
	"github.com/yungbote/sportsreel-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type UserRepo interface {
	Create(ctx context.Context, tx *gorm.DB, users []*types.User) ([]*types.User, error)
	GetByID(ctx context.Context, tx *gorm.DB, userID int64) (*types.User, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, userIDs []int64) ([]*types.User, error)
	ListByPrimaryPreference(ctx context.Context, tx *gorm.DB, token string, excludeUserID int64, limit int) ([]*types.User, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

func (ur *userRepo) Create(ctx context.Context, tx *gorm.DB, users []*types.User) ([]*types.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	if len(users) == 0 {
		return []*types.User{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// GetByID returns gorm.ErrRecordNotFound when the user does not exist.
func (ur *userRepo) GetByID(ctx context.Context, tx *gorm.DB, userID int64) (*types.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	var u types.User
	if err := transaction.WithContext(ctx).Where("id = ?", userID).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (ur *userRepo) GetByIDs(ctx context.Context, tx *gorm.DB, userIDs []int64) ([]*types.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	var results []*types.User
	if len(userIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", userIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListByPrimaryPreference returns up to limit users (other than excludeUserID) whose
// first non-empty preference token equals token (case-insensitive). The LIKE clause
// matches token anywhere in the column, so it only narrows the scan; the match itself
// is decided by PrimaryPreference.
func (ur *userRepo) ListByPrimaryPreference(ctx context.Context, tx *gorm.DB, token string, excludeUserID int64, limit int) ([]*types.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	token = strings.TrimSpace(token)
	var results []*types.User
	if token == "" || limit <= 0 {
		return results, nil
	}

	const batch = 200
	var lastID int64
	for len(results) < limit {
		var page []*types.User
		if err := transaction.WithContext(ctx).
			Where("id > ? AND id <> ?", lastID, excludeUserID).
			Where("LOWER(sports_preferences) LIKE ?", "%"+strings.ToLower(token)+"%").
			Order("id ASC").
			Limit(batch).
			Find(&page).Error; err != nil {
			return nil, err
		}
		for _, u := range page {
			if strings.EqualFold(u.PrimaryPreference(), token) {
				results = append(results, u)
				if len(results) == limit {
					break
				}
			}
		}
		if len(page) < batch {
			break
		}
		lastID = page[len(page)-1].ID
	}
	return results, nil
}
