package recommend

import (
	"context"
	"fmt"

	"github.com/yungbote/sportsreel-backend/internal/data/repos"
	types "github.com/yungbote/sportsreel-backend/internal/domain"
)

const trendingReasoning = "Popular content in preferred category"

type Trending struct {
	videos repos.VideoRepo
	cfg    Config
}

func NewTrending(r repos.Repos, cfg Config) *Trending {
	return &Trending{videos: r.Videos, cfg: cfg}
}

// Category is the user's first preference token, or the default category when the user
// is unknown or has no preferences.
func (t *Trending) Category(u *types.User) string {
	if cat := u.PrimaryPreference(); cat != "" {
		return cat
	}
	return t.cfg.DefaultCategory
}

// Recommend returns the k most viewed items of the user's category. u may be nil.
func (t *Trending) Recommend(ctx context.Context, u *types.User, k int) Outcome {
	videos, err := t.videos.ListPopularByCategory(ctx, nil, t.Category(u), k)
	if err != nil {
		return failed(fmt.Errorf("load trending: %w", err))
	}
	items := make([]Scored, 0, len(videos))
	for _, v := range videos {
		items = append(items, Scored{VideoID: v.ID, Score: t.cfg.TrendingScore, Reasoning: trendingReasoning})
	}
	return found(items)
}
