package telegram

import (
	"fmt"
	"strings"
	"time"

	"github.com/gotd/td/tgerr"

	"github.com/blockedby/episode-relay/internal/delivery"
)

// floodWait returns the wait demanded by a FLOOD_WAIT error, or 0.
func floodWait(err error) time.Duration {
	if err == nil {
		return 0
	}
	if d, ok := tgerr.AsFloodWait(err); ok {
		return d
	}

	// wrapped errors from middlewares lose the typed rpc error; the message keeps it
	// format: "rpc error code 420: FLOOD_WAIT (15)" or "FLOOD_WAIT_15"
	str := err.Error()
	idx := strings.Index(str, "FLOOD_WAIT")
	if idx < 0 {
		return 0
	}
	rest := strings.TrimLeft(str[idx+len("FLOOD_WAIT"):], "_ (")
	var seconds int
	if _, scanErr := fmt.Sscanf(rest, "%d", &seconds); scanErr != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// asDeliveryError maps FLOOD_WAIT to *delivery.RateLimitError and leaves other errors as is.
func asDeliveryError(err error) error {
	if err == nil {
		return nil
	}
	if d := floodWait(err); d > 0 {
		return fmt.Errorf("%w: %w", &delivery.RateLimitError{Wait: d}, err)
	}
	return err
}
