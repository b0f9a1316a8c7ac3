package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/sportsreel-backend/internal/http/response"
	"github.com/yungbote/sportsreel-backend/internal/platform/apierr"
	"github.com/yungbote/sportsreel-backend/internal/platform/ctxutil"
	"github.com/yungbote/sportsreel-backend/internal/services"
)

const maxBodyBytes = 1 << 20

type InteractionHandler struct {
	interactions services.InteractionService
}

func NewInteractionHandler(interactions services.InteractionService) *InteractionHandler {
	return &InteractionHandler{interactions: interactions}
}

type trackInteractionRequest struct {
	VideoID  int64          `json:"video_id"`
	Type     string         `json:"interaction_type"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type trackViewingRequest struct {
	VideoID              int64   `json:"video_id"`
	WatchDurationSeconds int     `json:"watch_duration_seconds"`
	CompletionRate       float64 `json:"completion_percentage"`
	SkipCount            *int    `json:"skip_count,omitempty"`
	ReplayCount          *int    `json:"replay_count,omitempty"`
}

type trackBatchRequest struct {
	Interactions []services.InteractionInput `json:"interactions"`
}

// POST /api/users/:userID/interactions
func (h *InteractionHandler) Track(c *gin.Context) {
	userID, err := pathID(c, "userID")
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	var req trackInteractionRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.interactions.TrackInteractionWithMetadata(c.Request.Context(), userID, req.VideoID, req.Type, req.Metadata); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true})
}

// POST /api/users/:userID/viewings
// Supplying skip or replay counts records a detailed viewing.
func (h *InteractionHandler) TrackViewing(c *gin.Context) {
	userID, err := pathID(c, "userID")
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	var req trackViewingRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	if req.SkipCount != nil || req.ReplayCount != nil {
		in := services.ViewingInput{
			UserID:               userID,
			VideoID:              req.VideoID,
			WatchDurationSeconds: req.WatchDurationSeconds,
			CompletionRate:       req.CompletionRate,
		}
		if req.SkipCount != nil {
			in.SkipCount = *req.SkipCount
		}
		if req.ReplayCount != nil {
			in.ReplayCount = *req.ReplayCount
		}
		err = h.interactions.TrackDetailedViewing(ctx, in)
	} else {
		err = h.interactions.TrackViewing(ctx, userID, req.VideoID, req.WatchDurationSeconds, req.CompletionRate)
	}
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true})
}

// POST /api/interactions/batch
// An authenticated caller may only submit its own interactions.
func (h *InteractionHandler) TrackBatch(c *gin.Context) {
	var req trackBatchRequest
	if !bindJSON(c, &req) {
		return
	}
	if sub, ok := ctxutil.Subject(c.Request.Context()); ok {
		for i, in := range req.Interactions {
			if in.UserID != sub {
				response.RespondAPIError(c, apierr.New(http.StatusForbidden, "forbidden", fmt.Errorf("interaction %d belongs to another user", i)))
				return
			}
		}
	}
	n, err := h.interactions.TrackBatch(c.Request.Context(), req.Interactions)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "ingested": n})
}

func bindJSON(c *gin.Context, dst any) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	if err := c.ShouldBindJSON(dst); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_json", err)
		return false
	}
	return true
}
