package response

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/sportsreel-backend/internal/jobs/worker"
	"github.com/yungbote/sportsreel-backend/internal/platform/apierr"
)

// RetryAfterSeconds is advertised when the worker pool rejects a request.
const RetryAfterSeconds = 1

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAPIError maps err through apierr.From. Internal errors are recorded on the
// gin context for the request logger and answered with a generic message.
func RespondAPIError(c *gin.Context, err error) {
	ae := apierr.From(err)
	if errors.Is(err, worker.ErrPoolSaturated) || errors.Is(err, worker.ErrPoolStopped) {
		c.Header("Retry-After", strconv.Itoa(RetryAfterSeconds))
	}
	if ae.Status >= http.StatusInternalServerError {
		_ = c.Error(err)
		if ae.Status == http.StatusInternalServerError {
			RespondError(c, ae.Status, ae.Code, errors.New("internal error"))
			return
		}
	}
	RespondError(c, ae.Status, ae.Code, ae.Err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
