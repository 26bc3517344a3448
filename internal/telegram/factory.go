package telegram

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/celestix/gotgproto"
	"github.com/celestix/gotgproto/sessionMaker"
	"github.com/glebarez/sqlite"

	"github.com/blockedby/episode-relay/internal/config"
)

// NewBotClient logs in with the bot token and keeps the session plus the peer cache
// in a SQLite file, so restarts reuse the auth key and known access hashes.
func NewBotClient(_ context.Context, cfg *config.Config) (*gotgproto.Client, error) {
	if cfg.SessionFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.SessionFile), 0o755); err != nil {
			return nil, fmt.Errorf("create session dir: %w", err)
		}
	}

	clientOpts := &gotgproto.ClientOpts{
		Session:          sessionMaker.SqlSession(sqlite.Open(cfg.SessionFile)),
		DisableCopyright: true,
		InMemory:         cfg.SessionFile == "",
	}

	client, err := gotgproto.NewClient(
		cfg.TGApiID,
		cfg.TGApiHash,
		gotgproto.ClientTypeBot(cfg.TGBotToken),
		clientOpts,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram client: %w", err)
	}

	return client, nil
}
