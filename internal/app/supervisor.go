package app

import (
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/yungbote/sportsreel-backend/internal/platform/logger"
)

// newSupervisor builds the root supervisor. Its events are logged through zap.
func newSupervisor(log *logger.Logger, shutdownTimeout time.Duration) *suture.Supervisor {
	supLog := log.With("component", "Supervisor")
	return suture.New("sportsreel", suture.Spec{
		EventHook: func(e suture.Event) {
			switch e.Type() {
			case suture.EventTypeServicePanic, suture.EventTypeServiceTerminate:
				supLog.Error("Supervised service failed", "event", e.String())
			case suture.EventTypeBackoff:
				supLog.Warn("Supervisor backing off", "event", e.String())
			default:
				supLog.Info("Supervisor event", "event", e.String())
			}
		},
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		Timeout:          shutdownTimeout,
	})
}
