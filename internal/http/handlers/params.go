package handlers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/sportsreel-backend/internal/platform/apierr"
)

func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apierr.BadRequest("invalid_"+snake(name), fmt.Errorf("%s must be a positive integer", name))
	}
	return id, nil
}

// queryInt returns def when the parameter is absent.
func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, apierr.BadRequest("invalid_"+name, fmt.Errorf("%s must be a positive integer", name))
	}
	return n, nil
}

func snake(s string) string {
	switch s {
	case "userID":
		return "user_id"
	case "videoID":
		return "video_id"
	default:
		return s
	}
}
