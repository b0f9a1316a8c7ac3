package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/yungbote/sportsreel-backend/internal/data/repos"
	types "github.com/yungbote/sportsreel-backend/internal/domain"
)

const collaborativeReasoning = "Watched to completion by fans with similar preferences"

// Collaborative scores items by how thoroughly peers sharing the user's primary
// preference watched them over the lookback window.
type Collaborative struct {
	users    repos.UserRepo
	viewings repos.ViewingRepo
	cfg      Config
	now      func() time.Time
}

func NewCollaborative(r repos.Repos, cfg Config) *Collaborative {
	return &Collaborative{
		users:    r.Users,
		viewings: r.Viewings,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (c *Collaborative) Recommend(ctx context.Context, u *types.User, k int) Outcome {
	token := u.PrimaryPreference()
	if token == "" || k <= 0 {
		return empty()
	}

	peers, err := c.users.ListByPrimaryPreference(ctx, nil, token, u.ID, c.cfg.PeerLimit)
	if err != nil {
		return failed(fmt.Errorf("load peers: %w", err))
	}
	if len(peers) == 0 {
		return empty()
	}
	peerIDs := make([]int64, 0, len(peers))
	for _, p := range peers {
		peerIDs = append(peerIDs, p.ID)
	}

	since := c.now().AddDate(0, 0, -c.cfg.LookbackDays)
	views, err := c.viewings.ListQualifyingForUsers(ctx, nil, peerIDs, since, c.cfg.PeerCompletionThreshold)
	if err != nil {
		return failed(fmt.Errorf("load peer views: %w", err))
	}
	return found(ScorePeerViews(views, c.cfg.PeerCompletionThreshold, k))
}

// ScorePeerViews sums qualifying completion fractions per item and returns the top k,
// highest first with ties broken by lower id. Scores are capped at 1.0.
func ScorePeerViews(views []*types.ViewingRecord, threshold float64, k int) []Scored {
	totals := make(map[int64]float64)
	for _, v := range views {
		if v.CompletionRate >= threshold {
			totals[v.VideoID] += v.CompletionRate
		}
	}
	ids := make([]int64, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if totals[ids[i]] != totals[ids[j]] {
			return totals[ids[i]] > totals[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if len(ids) > k {
		ids = ids[:k]
	}
	out := make([]Scored, 0, len(ids))
	for _, id := range ids {
		out = append(out, Scored{
			VideoID:   id,
			Score:     math.Min(totals[id], 1.0),
			Reasoning: collaborativeReasoning,
		})
	}
	return out
}
