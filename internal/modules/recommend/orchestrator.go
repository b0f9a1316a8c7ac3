package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/yungbote/sportsreel-backend/internal/data/repos"
	types "github.com/yungbote/sportsreel-backend/internal/domain"
	"github.com/yungbote/sportsreel-backend/internal/observability"
	"github.com/yungbote/sportsreel-backend/internal/platform/inference"
	"github.com/yungbote/sportsreel-backend/internal/platform/logger"
)

// ErrUserNotFound is the only error Recommend surfaces to callers.
var ErrUserNotFound = errors.New("user not found")

var (
	errUserUnavailable   = errors.New("user lookup failed earlier in this run")
	errInferenceDisabled = errors.New("inference client not configured")
)

const cachedReasoning = "Cached recommendation"

// Orchestrator drives one request through cache check, inference, collaborative and
// trending tiers. Tiers run strictly in sequence; a tier that fails or finds nothing
// hands over to the next one.
type Orchestrator struct {
	cfg Config

	users    repos.UserRepo
	videos   repos.VideoRepo
	viewings repos.ViewingRepo
	recs     repos.RecommendationRepo

	cache         *CacheCoordinator
	summarizer    *Summarizer
	inference     inference.Client
	collaborative *Collaborative
	trending      *Trending

	log     *logger.Logger
	metrics *observability.Metrics
	tracer  trace.Tracer
	now     func() time.Time
}

func NewOrchestrator(cfg Config, r repos.Repos, cache *CacheCoordinator, client inference.Client, baseLog *logger.Logger, metrics *observability.Metrics) *Orchestrator {
	return &Orchestrator{
		cfg:           cfg,
		users:         r.Users,
		videos:        r.Videos,
		viewings:      r.Viewings,
		recs:          r.Recommendations,
		cache:         cache,
		summarizer:    NewSummarizer(r, cache, baseLog, cfg.HighEngagementThreshold),
		inference:     client,
		collaborative: NewCollaborative(r, cfg),
		trending:      NewTrending(r, cfg),
		log:           baseLog.With("service", "RecommendationOrchestrator"),
		metrics:       metrics,
		tracer:        otel.Tracer("sportsreel/recommend"),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Recommend runs the full state machine starting at the cache check.
func (o *Orchestrator) Recommend(ctx context.Context, userID int64, count int) (*Result, error) {
	return o.run(ctx, userID, count, StageCacheCheck)
}

// Generate skips the cache check and always computes a fresh list.
func (o *Orchestrator) Generate(ctx context.Context, userID int64, count int) (*Result, error) {
	return o.run(ctx, userID, count, StageInference)
}

// Fallback answers from the trending tier only, for callers that cannot queue work.
func (o *Orchestrator) Fallback(ctx context.Context, userID int64, count int) (*Result, error) {
	return o.run(ctx, userID, count, StageTrending)
}

// Cached answers from the recommendation-list cache without touching any tier. A list
// generated for fewer items than requested is a miss.
func (o *Orchestrator) Cached(ctx context.Context, userID int64, count int) (*Result, bool) {
	k := o.cfg.count(count)
	entry, ok := o.cache.List(ctx, userID)
	if !ok || !entry.Covers(k) {
		return nil, false
	}
	ids := entry.VideoIDs
	if len(ids) > k {
		ids = ids[:k]
	}
	items := make([]Scored, 0, len(ids))
	for _, id := range ids {
		items = append(items, Scored{VideoID: id, Score: o.cfg.CachedScore, Reasoning: cachedReasoning})
	}
	now := o.now()
	return &Result{
		UserID:      userID,
		Algorithm:   types.AlgorithmInference,
		Cached:      true,
		Items:       materialize(userID, types.AlgorithmInference, uuid.Nil, items, now),
		GeneratedAt: now,
	}, true
}

func (o *Orchestrator) run(ctx context.Context, userID int64, count int, start Stage) (*Result, error) {
	ctx, span := o.tracer.Start(ctx, "recommend.run", trace.WithAttributes(
		attribute.Int64("user_id", userID),
		attribute.String("start_stage", start.String()),
	))
	defer span.End()

	k := o.cfg.count(count)
	began := time.Now()
	stage := start

	if stage == StageCacheCheck {
		if res, ok := o.Cached(ctx, userID, k); ok {
			span.SetAttributes(attribute.Bool("cached", true))
			return res, nil
		}
		stage = StageInference
	}

	user, err := o.loadUser(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		span.SetStatus(codes.Error, "user not found")
		return nil, err
	}
	if err != nil {
		o.log.Warn("User lookup failed, degrading to trending", "user_id", userID, "error", err)
		user = nil
	}

	var res *Result
	for stage != StageDone {
		switch stage {
		case StageInference:
			out := o.runTier(ctx, stage, func(ctx context.Context) Outcome { return o.inferenceTier(ctx, user, k) })
			switch out.Kind {
			case OutcomeFound:
				res = o.finish(ctx, userID, types.AlgorithmInference, out.Items, began)
				o.cache.PutList(ctx, userID, k, res.VideoIDs())
				stage = StageDone
			case OutcomeEmpty, OutcomeFailed:
				stage = StageCollaborative
			}
		case StageCollaborative:
			out := o.runTier(ctx, stage, func(ctx context.Context) Outcome {
				if user == nil {
					return failed(errUserUnavailable)
				}
				return o.collaborative.Recommend(ctx, user, k)
			})
			switch out.Kind {
			case OutcomeFound:
				res = o.finish(ctx, userID, types.AlgorithmCollaborative, out.Items, began)
				stage = StageDone
			case OutcomeEmpty, OutcomeFailed:
				stage = StageTrending
			}
		case StageTrending:
			out := o.runTier(ctx, stage, func(ctx context.Context) Outcome { return o.trending.Recommend(ctx, user, k) })
			res = o.finish(ctx, userID, types.AlgorithmTrending, out.Items, began)
			stage = StageDone
		default:
			return nil, fmt.Errorf("recommend: unexpected stage %s", stage)
		}
	}

	span.SetAttributes(
		attribute.String("algorithm", res.Algorithm.String()),
		attribute.Int("items", len(res.Items)),
	)
	return res, nil
}

func (o *Orchestrator) loadUser(ctx context.Context, userID int64) (*types.User, error) {
	u, err := o.users.GetByID(ctx, nil, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrUserNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("load user %d: %w", userID, err)
	}
	return u, nil
}

// runTier wraps one tier in a span, turns panics into failures and records the outcome.
func (o *Orchestrator) runTier(ctx context.Context, stage Stage, fn func(ctx context.Context) Outcome) (out Outcome) {
	ctx, span := o.tracer.Start(ctx, "recommend.tier."+stage.String())
	defer func() {
		if r := recover(); r != nil {
			out = failed(fmt.Errorf("tier %s panic: %v", stage, r))
		}
		span.SetAttributes(
			attribute.String("outcome", out.Kind.String()),
			attribute.Int("items", len(out.Items)),
		)
		if out.Err != nil {
			span.RecordError(out.Err)
			o.log.Warn("Recommendation tier failed", "tier", stage.String(), "error", out.Err)
		}
		o.metrics.ObserveTier(stage.String(), out.Kind.String())
		span.End()
	}()
	return fn(ctx)
}

func (o *Orchestrator) inferenceTier(ctx context.Context, u *types.User, k int) Outcome {
	if u == nil {
		return failed(errUserUnavailable)
	}
	if o.inference == nil {
		return failed(errInferenceDisabled)
	}

	summary, err := o.summarizer.Summarize(ctx, u.ID, o.cfg.LookbackDays)
	if err != nil {
		return failed(fmt.Errorf("summarize: %w", err))
	}

	now := o.now()
	recent, err := o.viewings.ListSince(ctx, nil, u.ID, now.Add(-o.cfg.RecentWindow))
	if err != nil {
		return failed(fmt.Errorf("load recent views: %w", err))
	}
	catalog, err := o.videos.ListPopular(ctx, nil, candidatePageSize(recent, o.cfg.CandidateLimit))
	if err != nil {
		return failed(fmt.Errorf("load catalog: %w", err))
	}
	candidates := SelectCandidates(catalog, recent, now, o.cfg.RecentWindow, o.cfg.CandidateLimit)
	if len(candidates) == 0 {
		return empty()
	}

	prompt := BuildPrompt(u, summary, candidates, k, o.cfg.TitleMaxChars, now)
	raw, err := o.inference.Complete(ctx, prompt)
	if err != nil {
		return failed(err)
	}

	picks := ParseInference(raw, candidates, o.cfg.ClampScores)
	if len(picks) == 0 {
		o.log.Debug("Inference reply had no usable picks", "user_id", u.ID, "reply_len", len(raw))
		return empty()
	}
	if len(picks) > k {
		picks = picks[:k]
	}
	return found(picks)
}

// finish materializes and persists a list. A failed insert is logged and the list is
// still returned.
func (o *Orchestrator) finish(ctx context.Context, userID int64, algo types.Algorithm, items []Scored, began time.Time) *Result {
	now := o.now()
	batch := uuid.New()
	rows := materialize(userID, algo, batch, items, now)
	if len(rows) > 0 {
		if _, err := o.recs.Create(ctx, nil, rows); err != nil {
			o.log.Warn("Persisting recommendations failed", "user_id", userID, "algorithm", algo.String(), "error", err)
		}
	}
	elapsed := time.Since(began)
	o.metrics.ObserveGeneration(algo.String(), elapsed)
	o.log.Info("Recommendations generated",
		"user_id", userID,
		"algorithm", algo.String(),
		"count", len(rows),
		"elapsed_ms", elapsed.Milliseconds(),
	)
	return &Result{
		UserID:      userID,
		Algorithm:   algo,
		BatchID:     batch,
		Items:       rows,
		GeneratedAt: now,
	}
}
