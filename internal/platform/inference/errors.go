package inference

import (
	"errors"
	"fmt"
)

// ErrUnavailable is the single outcome for transport failures, non-success statuses,
// malformed payloads, an open breaker and local rate limiting.
var ErrUnavailable = errors.New("inference unavailable")

func unavailable(reason string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", ErrUnavailable, reason)
	}
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, reason, err)
}
