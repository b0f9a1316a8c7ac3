package domain

import (
	"github.com/yungbote/sportsreel-backend/internal/domain/activity"
	"github.com/yungbote/sportsreel-backend/internal/domain/catalog"
	"github.com/yungbote/sportsreel-backend/internal/domain/reco"
	"github.com/yungbote/sportsreel-backend/internal/domain/user"
)

const (
	InteractionView         = activity.InteractionView
	InteractionDetailedView = activity.InteractionDetailedView
	InteractionLike         = activity.InteractionLike
	InteractionShare        = activity.InteractionShare
	InteractionSkip         = activity.InteractionSkip

	AlgorithmInference     = reco.AlgorithmInference
	AlgorithmCollaborative = reco.AlgorithmCollaborative
	AlgorithmTrending      = reco.AlgorithmTrending
)

type (
	User            = user.User
	Video           = catalog.Video
	Interaction     = activity.Interaction
	ViewingRecord   = activity.ViewingRecord
	Recommendation  = reco.Recommendation
	Algorithm       = reco.Algorithm
	BehaviorSummary = reco.BehaviorSummary
)

// Models returns every persisted type in migration order.
func Models() []any {
	return []any{
		&User{},
		&Video{},
		&Interaction{},
		&ViewingRecord{},
		&Recommendation{},
	}
}
