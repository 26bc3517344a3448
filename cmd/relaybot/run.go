package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/blockedby/episode-relay/internal/api"
	"github.com/blockedby/episode-relay/internal/bot"
	"github.com/blockedby/episode-relay/internal/config"
	"github.com/blockedby/episode-relay/internal/database"
	"github.com/blockedby/episode-relay/internal/delivery"
	"github.com/blockedby/episode-relay/internal/history"
	"github.com/blockedby/episode-relay/internal/logger"
	"github.com/blockedby/episode-relay/internal/nats"
	"github.com/blockedby/episode-relay/internal/publisher"
	"github.com/blockedby/episode-relay/internal/sanitize"
	"github.com/blockedby/episode-relay/internal/session"
	"github.com/blockedby/episode-relay/internal/telegram"
	"github.com/blockedby/episode-relay/internal/web"
)

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Log in with the bot token and serve the operator",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runBot(ctx, cfg)
		},
	}
}

func runBot(ctx context.Context, cfg *config.Config) error {
	if err := logger.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	log := logger.Get()

	// one process per session file
	if err := os.MkdirAll(filepath.Dir(cfg.LockFile), 0o755); err != nil {
		return fmt.Errorf("create lock dir: %w", err)
	}
	lock := flock.New(cfg.LockFile)
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another relaybot instance is already running")
	}
	defer func() { _ = lock.Unlock() }()

	log.Info().Msg("starting relaybot")

	captionPos, err := sanitize.ParseCaptionPosition(cfg.CaptionPosition)
	if err != nil {
		return fmt.Errorf("CAPTION_POSITION: %w", err)
	}
	sanitizer := sanitize.New(cfg.PromoKeywords)
	sess := session.New(sanitizer)

	tgManager := telegram.NewManager(cfg)
	if err := tgManager.Init(ctx); err != nil {
		return fmt.Errorf("telegram login: %w", err)
	}
	defer tgManager.Stop()

	tgClient := telegram.NewClient(tgManager, telegram.NewRateLimiter(cfg.TGRPS, 1))

	deps := bot.Deps{
		Session:   sess,
		Pipeline:  delivery.NewPipeline(log),
		Runner:    delivery.NewRunner(ctx, log),
		Messenger: tgClient,
		Resolver:  tgClient,
		Targets:   bot.TelegramTargets(tgClient, cfg.DividerSticker, sanitizer.WithCaptionText(cfg.CaptionText, captionPos)),
		Log:       log,
	}

	var runs *history.Repository
	if cfg.HistoryDB != "" {
		db, err := database.New(ctx, cfg.HistoryDB)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer db.Close()

		runs, err = history.NewRepository(db.GORM)
		if err != nil {
			return err
		}
		deps.History = runs
	}

	if cfg.NatsURL != "" {
		nc, err := nats.New(ctx, cfg.NatsURL)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to nats, publishing disabled")
		} else {
			defer nc.Close()
			if err := nc.EnsureStream(ctx, nats.StreamName, []string{"delivery.>"}); err != nil {
				log.Warn().Err(err).Msg("failed to ensure stream")
			}
			deps.Events = publisher.NewNATSPublisher(nc.Conn)
		}
	}

	ctrl := bot.NewController(deps)
	bot.NewHandlers(ctrl, cfg.OwnerID).Register(tgManager.GetClient().Dispatcher)

	var server *web.Server
	if cfg.HTTPPort > 0 {
		apiDeps := &api.Dependencies{
			Session:  sess,
			Jobs:     deps.Runner,
			Telegram: tgManager,
		}
		if runs != nil {
			apiDeps.Runs = runs
		}
		apiServer := api.NewServer(&api.Config{
			Title:       "relaybot",
			Description: "Collection session and delivery history",
			Version:     version,
		}, apiDeps)
		server = web.NewServer(&web.Config{Port: cfg.HTTPPort, Title: "relaybot", Description: "Collection session and delivery history"}, apiServer)
		go func() {
			log.Info().Int("port", cfg.HTTPPort).Msg("starting status api")
			if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("status api stopped")
			}
		}()
	}

	log.Info().Int64("owner_id", cfg.OwnerID).Msg("relaybot is ready")
	<-ctx.Done()
	log.Info().Msg("shutting down")

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Stop(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("status api shutdown")
		}
	}

	// the runner shares ctx, so an in-flight run stops at the next item
	deps.Runner.Wait()

	log.Info().Msg("shutdown complete")
	return nil
}
