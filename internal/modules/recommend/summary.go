package recommend

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/sportsreel-backend/internal/data/repos"
	types "github.com/yungbote/sportsreel-backend/internal/domain"
	"github.com/yungbote/sportsreel-backend/internal/platform/logger"
)

type Summarizer struct {
	interactions   repos.InteractionRepo
	viewings       repos.ViewingRepo
	videos         repos.VideoRepo
	cache          *CacheCoordinator
	log            *logger.Logger
	highEngagement float64
	now            func() time.Time
}

func NewSummarizer(r repos.Repos, cache *CacheCoordinator, baseLog *logger.Logger, highEngagement float64) *Summarizer {
	return &Summarizer{
		interactions:   r.Interactions,
		viewings:       r.Viewings,
		videos:         r.Videos,
		cache:          cache,
		log:            baseLog.With("service", "BehaviorSummarizer"),
		highEngagement: highEngagement,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Summarize returns the user's digest over the last lookbackDays, serving it from cache
// when a digest for the same window is present.
func (s *Summarizer) Summarize(ctx context.Context, userID int64, lookbackDays int) (*types.BehaviorSummary, error) {
	if cached, ok := s.cache.Behavior(ctx, userID); ok && cached.LookbackDays == lookbackDays {
		return cached, nil
	}

	since := s.now().AddDate(0, 0, -lookbackDays)
	var (
		interactions []*types.Interaction
		views        []*types.ViewingRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		interactions, err = s.interactions.ListSince(gctx, nil, userID, since)
		return err
	})
	g.Go(func() error {
		var err error
		views, err = s.viewings.ListSince(gctx, nil, userID, since)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load activity for user %d: %w", userID, err)
	}

	categories, err := s.videos.CategoriesByIDs(ctx, nil, referencedVideoIDs(interactions, views))
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}

	summary := BuildSummary(userID, lookbackDays, interactions, views, categories, s.highEngagement)
	s.cache.PutBehavior(ctx, summary)
	return summary, nil
}

// BuildSummary is the pure aggregation behind Summarize.
func BuildSummary(userID int64, lookbackDays int, interactions []*types.Interaction, views []*types.ViewingRecord, categories map[int64]string, highEngagement float64) *types.BehaviorSummary {
	summary := &types.BehaviorSummary{
		UserID:            userID,
		LookbackDays:      lookbackDays,
		InteractionCounts: map[string]int{},
		CategoryCounts:    map[string]int{},
	}
	if len(interactions) == 0 && len(views) == 0 {
		return summary
	}
	summary.HasData = true
	summary.TotalInteractions = len(interactions)

	for _, it := range interactions {
		summary.InteractionCounts[it.Type]++
		if cat, ok := categories[it.VideoID]; ok && cat != "" {
			summary.CategoryCounts[cat]++
		}
	}

	if len(views) > 0 {
		var completion, watch float64
		for _, v := range views {
			completion += v.CompletionRate
			watch += float64(v.WatchDurationSeconds)
			if v.CompletionRate >= highEngagement {
				summary.HighEngagementViews++
			}
		}
		n := float64(len(views))
		avgCompletion, avgWatch := completion/n, watch/n
		summary.AvgCompletionRate = &avgCompletion
		summary.AvgWatchSeconds = &avgWatch
		summary.TotalViews = len(views)
	}
	return summary
}

func referencedVideoIDs(interactions []*types.Interaction, views []*types.ViewingRecord) []int64 {
	seen := make(map[int64]struct{}, len(interactions)+len(views))
	ids := make([]int64, 0, len(seen))
	add := func(id int64) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	for _, it := range interactions {
		add(it.VideoID)
	}
	for _, v := range views {
		add(v.VideoID)
	}
	return ids
}
