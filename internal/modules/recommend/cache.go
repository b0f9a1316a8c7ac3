package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	types "github.com/yungbote/sportsreel-backend/internal/domain"
	"github.com/yungbote/sportsreel-backend/internal/observability"
	"github.com/yungbote/sportsreel-backend/internal/platform/cachestore"
	"github.com/yungbote/sportsreel-backend/internal/platform/logger"
)

const (
	familyBehavior        = "behavior"
	familyRecommendations = "recommendations"
)

func BehaviorKey(userID int64) string { return fmt.Sprintf("user:behavior:%d", userID) }

func ListKey(userID int64) string { return fmt.Sprintf("recommendations:%d", userID) }

// CacheCoordinator is the cache-aside layer for behavior summaries and recommendation
// lists. Store failures are logged and reported as misses; nothing here returns an error.
type CacheCoordinator struct {
	store       cachestore.Store
	log         *logger.Logger
	metrics     *observability.Metrics
	behaviorTTL time.Duration
	listTTL     time.Duration
}

func NewCacheCoordinator(store cachestore.Store, baseLog *logger.Logger, metrics *observability.Metrics, behaviorTTL, listTTL time.Duration) *CacheCoordinator {
	return &CacheCoordinator{
		store:       store,
		log:         baseLog.With("service", "CacheCoordinator"),
		metrics:     metrics,
		behaviorTTL: behaviorTTL,
		listTTL:     listTTL,
	}
}

func (c *CacheCoordinator) Behavior(ctx context.Context, userID int64) (*types.BehaviorSummary, bool) {
	var out types.BehaviorSummary
	if !c.get(ctx, familyBehavior, BehaviorKey(userID), &out) {
		return nil, false
	}
	return &out, true
}

func (c *CacheCoordinator) PutBehavior(ctx context.Context, summary *types.BehaviorSummary) {
	if summary == nil {
		return
	}
	c.set(ctx, BehaviorKey(summary.UserID), summary, c.behaviorTTL)
}

// CachedList is the recommendation-list cache payload. Requested is the count the list
// was generated for; it can answer any request up to that count.
type CachedList struct {
	Requested int     `json:"requested"`
	VideoIDs  []int64 `json:"video_ids"`
}

// Covers reports whether the entry was generated for at least count items.
func (l *CachedList) Covers(count int) bool {
	return l != nil && count <= l.Requested
}

// List returns the cached list for a user. An empty cached list counts as a miss.
func (c *CacheCoordinator) List(ctx context.Context, userID int64) (*CachedList, bool) {
	var out CachedList
	if !c.get(ctx, familyRecommendations, ListKey(userID), &out) || len(out.VideoIDs) == 0 {
		return nil, false
	}
	return &out, true
}

func (c *CacheCoordinator) PutList(ctx context.Context, userID int64, requested int, ids []int64) {
	if len(ids) == 0 {
		return
	}
	c.set(ctx, ListKey(userID), CachedList{Requested: max(requested, len(ids)), VideoIDs: ids}, c.listTTL)
}

// OnActivityRecorded runs after a new interaction or viewing record for the user.
func (c *CacheCoordinator) OnActivityRecorded(ctx context.Context, userID int64) {
	c.del(ctx, BehaviorKey(userID), ListKey(userID))
}

// OnRecommendationClicked drops only the list; the behavior digest is still valid.
func (c *CacheCoordinator) OnRecommendationClicked(ctx context.Context, userID int64) {
	c.del(ctx, ListKey(userID))
}

// Invalidate drops both families, used by explicit refreshes.
func (c *CacheCoordinator) Invalidate(ctx context.Context, userID int64) {
	c.del(ctx, BehaviorKey(userID), ListKey(userID))
}

func (c *CacheCoordinator) get(ctx context.Context, family, key string, dst any) bool {
	raw, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cachestore.ErrMiss) {
			c.metrics.CacheError("get")
			c.log.Warn("Cache get failed, treating as miss", "key", key, "error", err)
		}
		c.metrics.ObserveCache(family, false)
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		c.log.Warn("Cache payload undecodable, dropping", "key", key, "error", err)
		c.del(ctx, key)
		c.metrics.ObserveCache(family, false)
		return false
	}
	c.metrics.ObserveCache(family, true)
	return true
}

func (c *CacheCoordinator) set(ctx context.Context, key string, v any, ttl time.Duration) {
	raw, err := json.Marshal(v)
	if err != nil {
		c.log.Warn("Cache payload encode failed", "key", key, "error", err)
		return
	}
	if err := c.store.Set(ctx, key, string(raw), ttl); err != nil {
		c.metrics.CacheError("set")
		c.log.Warn("Cache set failed", "key", key, "error", err)
	}
}

func (c *CacheCoordinator) del(ctx context.Context, keys ...string) {
	if err := c.store.Delete(ctx, keys...); err != nil {
		c.metrics.CacheError("delete")
		c.log.Warn("Cache delete failed", "keys", keys, "error", err)
	}
}
