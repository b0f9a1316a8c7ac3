package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/sportsreel-backend/internal/http/response"
	"github.com/yungbote/sportsreel-backend/internal/modules/recommend"
	"github.com/yungbote/sportsreel-backend/internal/services"
)

type RecommendationHandler struct {
	recs services.RecommendationService
}

func NewRecommendationHandler(recs services.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{recs: recs}
}

type recommendationItem struct {
	VideoID   int64   `json:"video_id"`
	Score     float64 `json:"score"`
	Rank      int     `json:"rank"`
	Algorithm string  `json:"algorithm"`
	Reasoning string  `json:"reasoning"`
}

type recommendationsResponse struct {
	UserID          int64                `json:"user_id"`
	Algorithm       string               `json:"algorithm"`
	Cached          bool                 `json:"cached"`
	BatchID         *uuid.UUID           `json:"batch_id,omitempty"`
	GeneratedAt     time.Time            `json:"generated_at"`
	Recommendations []recommendationItem `json:"recommendations"`
}

func toResponse(res *recommend.Result) recommendationsResponse {
	out := recommendationsResponse{
		UserID:          res.UserID,
		Algorithm:       res.Algorithm.String(),
		Cached:          res.Cached,
		GeneratedAt:     res.GeneratedAt,
		Recommendations: make([]recommendationItem, 0, len(res.Items)),
	}
	if res.BatchID != uuid.Nil {
		id := res.BatchID
		out.BatchID = &id
	}
	for _, it := range res.Items {
		out.Recommendations = append(out.Recommendations, recommendationItem{
			VideoID:   it.VideoID,
			Score:     it.Score,
			Rank:      it.Rank,
			Algorithm: it.Algorithm.String(),
			Reasoning: it.Reasoning,
		})
	}
	return out
}

// GET /api/users/:userID/recommendations?count=N
func (h *RecommendationHandler) Get(c *gin.Context) {
	userID, count, ok := h.userAndCount(c)
	if !ok {
		return
	}
	res, err := h.recs.Get(c.Request.Context(), userID, count)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, toResponse(res))
}

// POST /api/users/:userID/recommendations/refresh
func (h *RecommendationHandler) Refresh(c *gin.Context) {
	userID, count, ok := h.userAndCount(c)
	if !ok {
		return
	}
	res, err := h.recs.Refresh(c.Request.Context(), userID, count)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, toResponse(res))
}

// GET /api/users/:userID/recommendations/history?limit=N
func (h *RecommendationHandler) History(c *gin.Context) {
	userID, err := pathID(c, "userID")
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	rows, err := h.recs.History(c.Request.Context(), userID, limit)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"recommendations": rows})
}

// POST /api/users/:userID/recommendations/:videoID/click
func (h *RecommendationHandler) Click(c *gin.Context) {
	userID, err := pathID(c, "userID")
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	videoID, err := pathID(c, "videoID")
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	changed, err := h.recs.MarkClicked(c.Request.Context(), userID, videoID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true, "changed": changed})
}

func (h *RecommendationHandler) userAndCount(c *gin.Context) (int64, int, bool) {
	userID, err := pathID(c, "userID")
	if err != nil {
		response.RespondAPIError(c, err)
		return 0, 0, false
	}
	count, err := queryInt(c, "count", 0)
	if err != nil {
		response.RespondAPIError(c, err)
		return 0, 0, false
	}
	return userID, count, true
}
