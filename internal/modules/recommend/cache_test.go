package recommend

import (
	"testing"
	"time"
)

func TestCacheCoordinatorInvalidation(t *testing.T) {
	h := newHarness(t)
	c := h.cache

	c.PutList(h.ctx, 1, 3, []int64{3, 2, 1})
	c.PutBehavior(h.ctx, BuildSummary(1, 30, nil, nil, nil, 0.8))

	if l, ok := c.List(h.ctx, 1); !ok || len(l.VideoIDs) != 3 || l.VideoIDs[0] != 3 || l.Requested != 3 {
		t.Fatalf("expected cached list [3 2 1] for 3, got %+v %v", l, ok)
	}

	c.OnRecommendationClicked(h.ctx, 1)
	if _, ok := c.List(h.ctx, 1); ok {
		t.Fatalf("expected list dropped after click")
	}
	if _, ok := c.Behavior(h.ctx, 1); !ok {
		t.Fatalf("expected behavior kept after click")
	}

	c.PutList(h.ctx, 1, 1, []int64{4})
	c.OnActivityRecorded(h.ctx, 1)
	if _, ok := c.List(h.ctx, 1); ok {
		t.Fatalf("expected list dropped after activity")
	}
	if _, ok := c.Behavior(h.ctx, 1); ok {
		t.Fatalf("expected behavior dropped after activity")
	}
}

func TestCacheCoordinatorTreatsGarbageAsMiss(t *testing.T) {
	h := newHarness(t)
	if err := h.store.Set(h.ctx, ListKey(9), "{not json", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok := h.cache.List(h.ctx, 9); ok {
		t.Fatalf("expected miss for undecodable payload")
	}
	if _, err := h.store.Get(h.ctx, ListKey(9)); err == nil {
		t.Fatalf("expected undecodable entry to be deleted")
	}

	h.cache.PutList(h.ctx, 9, 5, nil)
	if _, ok := h.cache.List(h.ctx, 9); ok {
		t.Fatalf("expected empty list not to be cached")
	}
}

func TestCachedListCovers(t *testing.T) {
	h := newHarness(t)
	h.cache.PutList(h.ctx, 2, 5, []int64{7, 6})

	l, ok := h.cache.List(h.ctx, 2)
	if !ok {
		t.Fatalf("expected cached list")
	}
	cases := []struct {
		count int
		want  bool
	}{
		{count: 1, want: true},
		{count: 5, want: true},
		{count: 6, want: false},
	}
	for _, tc := range cases {
		if got := l.Covers(tc.count); got != tc.want {
			t.Fatalf("Covers(%d) = %v, want %v", tc.count, got, tc.want)
		}
	}

	h.cache.PutList(h.ctx, 3, 1, []int64{1, 2})
	if l, _ := h.cache.List(h.ctx, 3); l == nil || l.Requested != 2 {
		t.Fatalf("expected requested raised to list length, got %+v", l)
	}
}

func TestCacheKeys(t *testing.T) {
	if BehaviorKey(42) != "user:behavior:42" || ListKey(42) != "recommendations:42" {
		t.Fatalf("unexpected keys %q %q", BehaviorKey(42), ListKey(42))
	}
}
