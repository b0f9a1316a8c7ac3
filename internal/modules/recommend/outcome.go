package recommend

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/sportsreel-backend/internal/domain"
)

// Stage is a state of the generation state machine.
type Stage uint8

const (
	StageCacheCheck Stage = iota
	StageInference
	StageCollaborative
	StageTrending
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageCacheCheck:
		return "cache_check"
	case StageInference:
		return "inference"
	case StageCollaborative:
		return "collaborative"
	case StageTrending:
		return "trending"
	case StageDone:
		return "done"
	default:
		return fmt.Sprintf("stage(%d)", uint8(s))
	}
}

// OutcomeKind separates "this tier had nothing to say" from "this tier broke".
type OutcomeKind uint8

const (
	OutcomeFound OutcomeKind = iota + 1
	OutcomeEmpty
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeFound:
		return "found"
	case OutcomeEmpty:
		return "empty"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Scored is one ranked pick before it is materialized as a Recommendation.
// Position in the slice is the rank.
type Scored struct {
	VideoID   int64
	Score     float64
	Reasoning string
}

type Outcome struct {
	Kind  OutcomeKind
	Items []Scored
	Err   error
}

func found(items []Scored) Outcome {
	if len(items) == 0 {
		return Outcome{Kind: OutcomeEmpty}
	}
	return Outcome{Kind: OutcomeFound, Items: items}
}

func empty() Outcome { return Outcome{Kind: OutcomeEmpty} }

func failed(err error) Outcome { return Outcome{Kind: OutcomeFailed, Err: err} }

// Result is one answered recommendation request.
type Result struct {
	UserID      int64
	Algorithm   types.Algorithm
	Cached      bool
	BatchID     uuid.UUID
	Items       []*types.Recommendation
	GeneratedAt time.Time
}

// VideoIDs returns the item ids in rank order.
func (r *Result) VideoIDs() []int64 {
	if r == nil {
		return nil
	}
	ids := make([]int64, 0, len(r.Items))
	for _, it := range r.Items {
		ids = append(ids, it.VideoID)
	}
	return ids
}

// materialize assigns ranks 1..K in slice order.
func materialize(userID int64, algo types.Algorithm, batch uuid.UUID, items []Scored, now time.Time) []*types.Recommendation {
	out := make([]*types.Recommendation, 0, len(items))
	for i, it := range items {
		out = append(out, &types.Recommendation{
			UserID:    userID,
			VideoID:   it.VideoID,
			BatchID:   batch,
			Score:     it.Score,
			Algorithm: algo,
			Rank:      i + 1,
			Reasoning: it.Reasoning,
			CreatedAt: now,
		})
	}
	return out
}
