package reco

import (
	"fmt"
	"sort"
	"strings"
)

// BehaviorSummary is the digest of a user's recent activity fed to the inference prompt.
type BehaviorSummary struct {
	UserID              int64          `json:"user_id"`
	LookbackDays        int            `json:"lookback_days"`
	HasData             bool           `json:"has_data"`
	TotalInteractions   int            `json:"total_interactions"`
	InteractionCounts   map[string]int `json:"interaction_counts"`
	CategoryCounts      map[string]int `json:"category_counts"`
	AvgCompletionRate   *float64       `json:"avg_completion_rate,omitempty"`
	AvgWatchSeconds     *float64       `json:"avg_watch_seconds,omitempty"`
	HighEngagementViews int            `json:"high_engagement_views"`
	TotalViews          int            `json:"total_views"`
}

// HighEngagementRatio is the share of views at or above the high-engagement threshold.
func (s *BehaviorSummary) HighEngagementRatio() float64 {
	if s == nil || s.TotalViews == 0 {
		return 0
	}
	return float64(s.HighEngagementViews) / float64(s.TotalViews)
}

// Text renders the digest in the line-oriented form used inside prompts.
func (s *BehaviorSummary) Text() string {
	var b strings.Builder
	b.WriteString("User Behavior Summary:\n")
	if s == nil || !s.HasData {
		days := 0
		if s != nil {
			days = s.LookbackDays
		}
		fmt.Fprintf(&b, "- No activity recorded in last %d days\n", days)
		b.WriteString("- Interaction types: N/A\n")
		b.WriteString("- Preferred categories: N/A\n")
		b.WriteString("- Average completion rate: N/A\n")
		b.WriteString("- Average watch duration: N/A\n")
		return b.String()
	}
	fmt.Fprintf(&b, "- Total interactions in last %d days: %d\n", s.LookbackDays, s.TotalInteractions)
	fmt.Fprintf(&b, "- Interaction types: %s\n", formatCounts(s.InteractionCounts))
	fmt.Fprintf(&b, "- Preferred categories: %s\n", formatCounts(s.CategoryCounts))
	if s.AvgCompletionRate != nil {
		fmt.Fprintf(&b, "- Average completion rate: %.2f\n", *s.AvgCompletionRate)
	} else {
		b.WriteString("- Average completion rate: N/A\n")
	}
	if s.AvgWatchSeconds != nil {
		fmt.Fprintf(&b, "- Average watch duration: %.0f seconds\n", *s.AvgWatchSeconds)
	} else {
		b.WriteString("- Average watch duration: N/A\n")
	}
	if s.TotalViews > 0 {
		fmt.Fprintf(&b, "- High engagement videos: %d out of %d\n", s.HighEngagementViews, s.TotalViews)
	}
	return b.String()
}

// formatCounts orders by count desc then key so prompts are stable across runs.
func formatCounts(m map[string]int) string {
	if len(m) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] != m[keys[j]] {
			return m[keys[i]] > m[keys[j]]
		}
		return keys[i] < keys[j]
	})
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, m[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
