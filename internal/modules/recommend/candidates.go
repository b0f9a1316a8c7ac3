package recommend

import (
	"time"

	types "github.com/yungbote/sportsreel-backend/internal/domain"
)

// SelectCandidates drops every catalog item the user viewed inside window before now
// and caps the remainder at limit, keeping catalog order.
func SelectCandidates(catalog []*types.Video, recent []*types.ViewingRecord, now time.Time, window time.Duration, limit int) []*types.Video {
	if limit <= 0 {
		return nil
	}
	cutoff := now.Add(-window)
	watched := make(map[int64]struct{}, len(recent))
	for _, v := range recent {
		if !v.CreatedAt.Before(cutoff) {
			watched[v.VideoID] = struct{}{}
		}
	}

	out := make([]*types.Video, 0, min(limit, len(catalog)))
	for _, v := range catalog {
		if len(out) == limit {
			break
		}
		if _, seen := watched[v.ID]; seen {
			continue
		}
		out = append(out, v)
	}
	return out
}

// candidatePageSize is how many popular catalog rows to read so that at least limit
// survive the exclusion of recently watched items.
func candidatePageSize(recent []*types.ViewingRecord, limit int) int {
	distinct := make(map[int64]struct{}, len(recent))
	for _, v := range recent {
		distinct[v.VideoID] = struct{}{}
	}
	return limit + len(distinct)
}
