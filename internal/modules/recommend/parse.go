package recommend

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	types "github.com/yungbote/sportsreel-backend/internal/domain"
)

const inferenceReasoning = "AI-generated based on user behavior analysis"

// ParseInference extracts (id, score) picks from a raw "id:score,id:score" reply.
// Malformed tokens and ids outside candidates are skipped; the model's order is kept.
// A repeated id keeps its first position. With clamp set, scores are forced into [0,1].
func ParseInference(raw string, candidates []*types.Video, clamp bool) []Scored {
	allowed := make(map[int64]struct{}, len(candidates))
	for _, v := range candidates {
		allowed[v.ID] = struct{}{}
	}

	cleaned := strings.Map(func(r rune) rune {
		if r == '[' || r == ']' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)

	var out []Scored
	seen := make(map[int64]struct{})
	for _, tok := range strings.Split(cleaned, ",") {
		if strings.Count(tok, ":") != 1 {
			continue
		}
		idPart, scorePart, _ := strings.Cut(tok, ":")
		id, err := strconv.ParseInt(idPart, 10, 64)
		if err != nil {
			continue
		}
		score, err := strconv.ParseFloat(scorePart, 64)
		if err != nil || math.IsNaN(score) || math.IsInf(score, 0) {
			continue
		}
		if _, ok := allowed[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if clamp {
			score = math.Max(0, math.Min(1, score))
		}
		out = append(out, Scored{VideoID: id, Score: score, Reasoning: inferenceReasoning})
	}
	return out
}
