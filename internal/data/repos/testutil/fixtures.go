package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	types "github.com/yungbote/sportsreel-backend/internal/domain"
	"gorm.io/gorm"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, preferences string) *types.User {
	tb.Helper()
	u := &types.User{
		Email:       fmt.Sprintf("%s@example.com", uuid.NewString()[:8]),
		Username:    "fan",
		Preferences: preferences,
		CreatedAt:   time.Now().UTC().Add(-90 * 24 * time.Hour),
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedVideo(tb testing.TB, ctx context.Context, tx *gorm.DB, title, category string, views int64) *types.Video {
	tb.Helper()
	dur := 120
	v := &types.Video{
		ExternalID:      uuid.NewString(),
		Title:           title,
		Category:        category,
		DurationSeconds: &dur,
		ViewCount:       views,
	}
	if err := tx.WithContext(ctx).Create(v).Error; err != nil {
		tb.Fatalf("seed video: %v", err)
	}
	return v
}

func SeedViewing(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, videoID int64, completion float64, at time.Time) *types.ViewingRecord {
	tb.Helper()
	rec := &types.ViewingRecord{
		UserID:               userID,
		VideoID:              videoID,
		WatchDurationSeconds: int(completion * 120),
		CompletionRate:       completion,
		CreatedAt:            at.UTC(),
	}
	if err := tx.WithContext(ctx).Create(rec).Error; err != nil {
		tb.Fatalf("seed viewing: %v", err)
	}
	return rec
}

func SeedInteraction(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, videoID int64, kind string, at time.Time) *types.Interaction {
	tb.Helper()
	row := &types.Interaction{
		UserID:    userID,
		VideoID:   videoID,
		Type:      kind,
		CreatedAt: at.UTC(),
	}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed interaction: %v", err)
	}
	return row
}

func SeedRecommendation(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, videoID int64, rank int, at time.Time) *types.Recommendation {
	tb.Helper()
	row := &types.Recommendation{
		UserID:    userID,
		VideoID:   videoID,
		BatchID:   uuid.New(),
		Score:     0.5,
		Algorithm: types.AlgorithmTrending,
		Rank:      rank,
		CreatedAt: at.UTC(),
	}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed recommendation: %v", err)
	}
	return row
}
