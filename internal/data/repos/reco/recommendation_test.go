package reco

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/sportsreel-backend/internal/data/repos/testutil"
	types "github.com/yungbote/sportsreel-backend/internal/domain"
)

func TestRecommendationRepoMarkClickedIsIdempotent(t *testing.T) {
	db := testutil.DB(t)
	repo := NewRecommendationRepo(db, testutil.Logger(t))
	ctx := context.Background()
	now := time.Now().UTC()

	u := testutil.SeedUser(t, ctx, db, "NBA")
	v := testutil.SeedVideo(t, ctx, db, "clip", "NBA", 1)
	older := testutil.SeedRecommendation(t, ctx, db, u.ID, v.ID, 1, now.Add(-2*time.Hour))
	newer := testutil.SeedRecommendation(t, ctx, db, u.ID, v.ID, 1, now.Add(-time.Hour))

	changed, err := repo.MarkClicked(ctx, nil, u.ID, v.ID, now)
	if err != nil {
		t.Fatalf("MarkClicked: %v", err)
	}
	if !changed {
		t.Fatalf("MarkClicked: expected first call to change state")
	}

	var got types.Recommendation
	if err := db.First(&got, newer.ID).Error; err != nil {
		t.Fatalf("reload newer: %v", err)
	}
	if !got.WasClicked || got.ClickedAt == nil {
		t.Fatalf("expected newest row clicked, got %+v", got)
	}
	if err := db.First(&got, older.ID).Error; err != nil {
		t.Fatalf("reload older: %v", err)
	}
	if got.WasClicked {
		t.Fatalf("expected older row untouched")
	}

	// The second call reaches the older row; a third finds nothing.
	if changed, err = repo.MarkClicked(ctx, nil, u.ID, v.ID, now); err != nil || !changed {
		t.Fatalf("MarkClicked (older): changed=%v err=%v", changed, err)
	}
	if changed, err = repo.MarkClicked(ctx, nil, u.ID, v.ID, now); err != nil || changed {
		t.Fatalf("MarkClicked (exhausted): changed=%v err=%v", changed, err)
	}

	if changed, err = repo.MarkClicked(ctx, nil, u.ID, v.ID+99, now); err != nil || changed {
		t.Fatalf("MarkClicked (no row): changed=%v err=%v", changed, err)
	}
}

func TestRecommendationRepoDeleteOlderThan(t *testing.T) {
	db := testutil.DB(t)
	repo := NewRecommendationRepo(db, testutil.Logger(t))
	ctx := context.Background()
	now := time.Now().UTC()

	u := testutil.SeedUser(t, ctx, db, "NBA")
	v := testutil.SeedVideo(t, ctx, db, "clip", "NBA", 1)
	testutil.SeedRecommendation(t, ctx, db, u.ID, v.ID, 1, now.Add(-40*24*time.Hour))
	testutil.SeedRecommendation(t, ctx, db, u.ID, v.ID, 2, now.Add(-31*24*time.Hour))
	keep := testutil.SeedRecommendation(t, ctx, db, u.ID, v.ID, 1, now.Add(-time.Hour))

	deleted, err := repo.DeleteOlderThan(ctx, nil, now.Add(-30*24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteOlderThan: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("DeleteOlderThan: expected 2 deleted, got %d", deleted)
	}

	rest, err := repo.ListRecent(ctx, nil, u.ID, 10)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(rest) != 1 || rest[0].ID != keep.ID {
		t.Fatalf("ListRecent: unexpected rows: %+v", rest)
	}
}
