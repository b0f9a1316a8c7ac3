package repos

import (
	"github.com/yungbote/sportsreel-backend/internal/data/repos/activity"
	"github.com/yungbote/sportsreel-backend/internal/data/repos/catalog"
	"github.com/yungbote/sportsreel-backend/internal/data/repos/reco"
	"github.com/yungbote/sportsreel-backend/internal/data/repos/user"
	"github.com/yungbote/sportsreel-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type UserRepo = user.UserRepo
type VideoRepo = catalog.VideoRepo
type InteractionRepo = activity.InteractionRepo
type ViewingRepo = activity.ViewingRepo
type RecommendationRepo = reco.RecommendationRepo

type Repos struct {
	Users           UserRepo
	Videos          VideoRepo
	Interactions    InteractionRepo
	Viewings        ViewingRepo
	Recommendations RecommendationRepo
}

func New(db *gorm.DB, log *logger.Logger) Repos {
	return Repos{
		Users:           user.NewUserRepo(db, log),
		Videos:          catalog.NewVideoRepo(db, log),
		Interactions:    activity.NewInteractionRepo(db, log),
		Viewings:        activity.NewViewingRepo(db, log),
		Recommendations: reco.NewRecommendationRepo(db, log),
	}
}
