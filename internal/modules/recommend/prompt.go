package recommend

import (
	"fmt"
	"strings"
	"time"

	types "github.com/yungbote/sportsreel-backend/internal/domain"
)

// BuildPrompt renders the user profile, behavior digest and candidate list into the
// instruction sent to the inference endpoint.
func BuildPrompt(u *types.User, summary *types.BehaviorSummary, candidates []*types.Video, count, titleMax int, now time.Time) string {
	var b strings.Builder

	b.WriteString("TASK: Recommend sports videos for user engagement\n\n")
	b.WriteString("USER PROFILE:\n")
	prefs := strings.TrimSpace(u.Preferences)
	if prefs == "" {
		prefs = "General sports"
	}
	fmt.Fprintf(&b, "- User preferences: %s\n", prefs)
	fmt.Fprintf(&b, "- Account age: %d days\n\n", accountAgeDays(u.CreatedAt, now))

	b.WriteString(summary.Text())
	b.WriteString("\n")

	b.WriteString("AVAILABLE VIDEOS (select from these IDs):\n")
	for _, v := range candidates {
		duration := "Unknown duration"
		if v.DurationSeconds != nil {
			duration = fmt.Sprintf("%ds", *v.DurationSeconds)
		}
		fmt.Fprintf(&b, "ID:%d | %s | %s | %s | Views:%d\n", v.ID, v.Category, truncateRunes(v.Title, titleMax), duration, v.ViewCount)
	}

	b.WriteString("\nINSTRUCTIONS:\n")
	b.WriteString("1. Analyze the user's behavior patterns and preferences\n")
	fmt.Fprintf(&b, "2. Select %d video IDs that will maximize user engagement\n", count)
	b.WriteString("3. Consider: completion rates, category preferences, video duration, and popularity\n")
	b.WriteString("4. Provide variety while respecting user preferences\n")
	b.WriteString("5. Return ONLY video IDs with confidence scores between 0.1 and 1.0, most relevant first\n")
	b.WriteString("Format: ID:score,ID:score,ID:score (example: 123:0.95,456:0.87,789:0.81)\n")
	return b.String()
}

func accountAgeDays(created, now time.Time) int {
	if created.IsZero() || now.Before(created) {
		return 0
	}
	return int(now.Sub(created).Hours() / 24)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
