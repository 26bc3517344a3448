package api

import (
	"context"

	"github.com/blockedby/episode-relay/internal/delivery"
	"github.com/blockedby/episode-relay/internal/history"
	"github.com/blockedby/episode-relay/internal/session"
	"github.com/blockedby/episode-relay/internal/telegram"
)

// SessionReader exposes the collection session snapshot.
type SessionReader interface {
	Snapshot() session.Status
}

// JobReader exposes the running delivery job.
type JobReader interface {
	Current() *delivery.Job
}

// TelegramStatus reports the bot client status.
type TelegramStatus interface {
	GetStatus() telegram.Status
}

// RunLister lists recorded delivery runs.
type RunLister interface {
	Recent(ctx context.Context, limit int) ([]history.Run, error)
	Count(ctx context.Context) (int64, error)
}
