package recommend

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/yungbote/sportsreel-backend/internal/data/repos/testutil"
	types "github.com/yungbote/sportsreel-backend/internal/domain"
)

func assertContiguousRanks(t *testing.T, res *Result) {
	t.Helper()
	for i, it := range res.Items {
		if it.Rank != i+1 {
			t.Fatalf("item %d: expected rank %d, got %d", i, i+1, it.Rank)
		}
		if it.UserID != res.UserID || it.Algorithm != res.Algorithm {
			t.Fatalf("item %d: inconsistent row %+v", i, it)
		}
	}
}

func persistedCount(t *testing.T, h *harness, userID int64) int64 {
	t.Helper()
	var n int64
	if err := h.db.Model(&types.Recommendation{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		t.Fatalf("count recommendations: %v", err)
	}
	return n
}

func TestRecommendInferenceThenCache(t *testing.T) {
	h := newHarness(t)
	u := testutil.SeedUser(t, h.ctx, h.db, "NBA")
	a := testutil.SeedVideo(t, h.ctx, h.db, "A", "NBA", 10)
	b := testutil.SeedVideo(t, h.ctx, h.db, "B", "NBA", 20)
	h.ai.reply = func(string) (string, error) {
		return fmt.Sprintf("[%d:0.95,%d:0.87,999:0.5]", b.ID, a.ID), nil
	}

	res, err := h.orch.Recommend(h.ctx, u.ID, 5)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if res.Algorithm != types.AlgorithmInference || res.Cached {
		t.Fatalf("expected fresh inference result, got %s cached=%v", res.Algorithm, res.Cached)
	}
	if ids := res.VideoIDs(); len(ids) != 2 || ids[0] != b.ID || ids[1] != a.ID {
		t.Fatalf("unexpected ids %v", ids)
	}
	assertContiguousRanks(t, res)
	if n := persistedCount(t, h, u.ID); n != 2 {
		t.Fatalf("expected 2 persisted rows, got %d", n)
	}

	again, err := h.orch.Recommend(h.ctx, u.ID, 1)
	if err != nil {
		t.Fatalf("Recommend (cached): %v", err)
	}
	if !again.Cached || len(again.Items) != 1 || again.Items[0].VideoID != b.ID {
		t.Fatalf("expected cached first item, got %+v", again)
	}
	if again.Items[0].Score != 0.8 || again.Items[0].Rank != 1 {
		t.Fatalf("unexpected cached item %+v", again.Items[0])
	}
	if h.ai.calls() != 1 {
		t.Fatalf("expected one inference call, got %d", h.ai.calls())
	}
	if n := persistedCount(t, h, u.ID); n != 2 {
		t.Fatalf("cached answer must not persist rows, got %d", n)
	}
}

func TestRecommendLargerCountSkipsSmallerCachedList(t *testing.T) {
	h := newHarness(t)
	u := testutil.SeedUser(t, h.ctx, h.db, "NBA")
	a := testutil.SeedVideo(t, h.ctx, h.db, "A", "NBA", 10)
	b := testutil.SeedVideo(t, h.ctx, h.db, "B", "NBA", 20)
	h.ai.reply = func(string) (string, error) {
		return fmt.Sprintf("[%d:0.95,%d:0.87]", b.ID, a.ID), nil
	}

	small, err := h.orch.Recommend(h.ctx, u.ID, 1)
	if err != nil {
		t.Fatalf("Recommend(1): %v", err)
	}
	if len(small.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(small.Items))
	}

	large, err := h.orch.Recommend(h.ctx, u.ID, 10)
	if err != nil {
		t.Fatalf("Recommend(10): %v", err)
	}
	if large.Cached || len(large.Items) != 2 {
		t.Fatalf("expected fresh 2-item result, got cached=%v items=%d", large.Cached, len(large.Items))
	}
	if h.ai.calls() != 2 {
		t.Fatalf("expected a second inference call, got %d", h.ai.calls())
	}

	again, err := h.orch.Recommend(h.ctx, u.ID, 10)
	if err != nil {
		t.Fatalf("Recommend(10) again: %v", err)
	}
	if !again.Cached || len(again.Items) != 2 {
		t.Fatalf("expected cached 2-item result, got cached=%v items=%d", again.Cached, len(again.Items))
	}
}

func TestRecommendFallsBackToCollaborative(t *testing.T) {
	h := newHarness(t)
	u := testutil.SeedUser(t, h.ctx, h.db, "NBA")
	peer := testutil.SeedUser(t, h.ctx, h.db, "NBA,NHL")
	v := testutil.SeedVideo(t, h.ctx, h.db, "A", "NBA", 10)
	testutil.SeedViewing(t, h.ctx, h.db, peer.ID, v.ID, 0.9, daysAgo(3))
	h.ai.reply = func(string) (string, error) { return "", errors.New("upstream down") }

	res, err := h.orch.Recommend(h.ctx, u.ID, 10)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if res.Algorithm != types.AlgorithmCollaborative {
		t.Fatalf("expected collaborative, got %s", res.Algorithm)
	}
	if len(res.Items) != 1 || res.Items[0].Score > 1.0 || res.Items[0].Reasoning != collaborativeReasoning {
		t.Fatalf("unexpected items %+v", res.Items)
	}
	if _, ok := h.cache.List(h.ctx, u.ID); ok {
		t.Fatalf("collaborative lists must not be cached")
	}
}

func TestRecommendFallsBackToTrending(t *testing.T) {
	h := newHarness(t)
	u := testutil.SeedUser(t, h.ctx, h.db, "Soccer")
	a := testutil.SeedVideo(t, h.ctx, h.db, "A", "Soccer", 500)
	testutil.SeedVideo(t, h.ctx, h.db, "B", "Soccer", 100)
	h.ai.reply = func(string) (string, error) { return "Sorry, I cannot help with that.", nil }

	res, err := h.orch.Recommend(h.ctx, u.ID, 1)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if res.Algorithm != types.AlgorithmTrending {
		t.Fatalf("expected trending, got %s", res.Algorithm)
	}
	if len(res.Items) != 1 || res.Items[0].VideoID != a.ID || res.Items[0].Score != 0.5 {
		t.Fatalf("unexpected items %+v", res.Items)
	}
	assertContiguousRanks(t, res)
}

func TestRecommendEmptyCatalog(t *testing.T) {
	h := newHarness(t)
	u := testutil.SeedUser(t, h.ctx, h.db, "NBA")

	res, err := h.orch.Recommend(h.ctx, u.ID, 10)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if res.Algorithm != types.AlgorithmTrending || len(res.Items) != 0 {
		t.Fatalf("expected empty trending result, got %s %d", res.Algorithm, len(res.Items))
	}
	if h.ai.calls() != 0 {
		t.Fatalf("inference must not run without candidates")
	}
}

func TestRecommendUnknownUser(t *testing.T) {
	h := newHarness(t)
	if _, err := h.orch.Recommend(h.ctx, 4242, 10); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestRecommendExcludesRecentlyWatched(t *testing.T) {
	tests := []struct {
		name    string
		ago     int
		visible bool
	}{
		{name: "three days ago", ago: 3, visible: false},
		{name: "eight days ago", ago: 8, visible: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			u := testutil.SeedUser(t, h.ctx, h.db, "NBA")
			watched := testutil.SeedVideo(t, h.ctx, h.db, "Watched", "NBA", 100)
			testutil.SeedVideo(t, h.ctx, h.db, "Other", "NBA", 50)
			testutil.SeedViewing(t, h.ctx, h.db, u.ID, watched.ID, 1.0, daysAgo(tt.ago))

			if _, err := h.orch.Generate(h.ctx, u.ID, 5); err != nil {
				t.Fatalf("Generate: %v", err)
			}
			line := fmt.Sprintf("ID:%d |", watched.ID)
			if got := strings.Contains(h.ai.lastPrompt(), line); got != tt.visible {
				t.Fatalf("expected candidate visible=%v, prompt:\n%s", tt.visible, h.ai.lastPrompt())
			}
		})
	}
}

func TestGenerateBypassesCache(t *testing.T) {
	h := newHarness(t)
	u := testutil.SeedUser(t, h.ctx, h.db, "NBA")
	v := testutil.SeedVideo(t, h.ctx, h.db, "A", "NBA", 10)
	h.cache.PutList(h.ctx, u.ID, 5, []int64{v.ID})
	h.ai.reply = func(string) (string, error) { return fmt.Sprintf("%d:0.9", v.ID), nil }

	res, err := h.orch.Generate(h.ctx, u.ID, 3)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Cached || h.ai.calls() != 1 {
		t.Fatalf("expected a fresh generation, cached=%v calls=%d", res.Cached, h.ai.calls())
	}
}

func TestFallbackRunsTrendingOnly(t *testing.T) {
	h := newHarness(t)
	u := testutil.SeedUser(t, h.ctx, h.db, "")
	v := testutil.SeedVideo(t, h.ctx, h.db, "A", "NBA", 10)

	res, err := h.orch.Fallback(h.ctx, u.ID, 3)
	if err != nil {
		t.Fatalf("Fallback: %v", err)
	}
	if res.Algorithm != types.AlgorithmTrending || len(res.Items) != 1 || res.Items[0].VideoID != v.ID {
		t.Fatalf("unexpected fallback result %+v", res)
	}
	if h.ai.calls() != 0 {
		t.Fatalf("fallback must not call inference")
	}
}
