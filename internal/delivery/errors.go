package delivery

import (
	"errors"
	"fmt"
	"time"
)

// errors
var (
	ErrAlreadyRunning = errors.New("a delivery run is already in progress")
)

// RateLimitError is returned by a Target when the platform asks the caller to back off.
// Wait is the platform-mandated delay before the same request may be retried.
type RateLimitError struct {
	Wait time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited: retry after %s", e.Wait)
}

// AsRateLimit reports whether err carries a RateLimitError.
func AsRateLimit(err error) (*RateLimitError, bool) {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl, true
	}
	return nil, false
}
