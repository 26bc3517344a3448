// Package delivery sends organized episode groups to a destination.
package delivery

import (
	"context"
	"time"

	"github.com/blockedby/episode-relay/internal/logger"
	"github.com/blockedby/episode-relay/internal/organizer"
	"github.com/blockedby/episode-relay/internal/session"
)

// Target is the messaging side of a delivery. Implementations return *RateLimitError
// when the platform demands a pause.
type Target interface {
	Announce(ctx context.Context, episode string) error
	Deliver(ctx context.Context, item session.CollectedItem, opts session.Options) error
	Divider(ctx context.Context) error
}

// Report summarizes a finished run.
type Report struct {
	Delivered   int
	Failed      int
	Groups      int
	RateLimited int // number of platform-mandated pauses taken
	Duration    time.Duration
}

// SleepFunc pauses for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Pipeline delivers groups sequentially. It holds no per-run state.
type Pipeline struct {
	sleep SleepFunc
	log   *logger.Logger
}

// NewPipeline creates a pipeline using real-time sleeps.
func NewPipeline(log *logger.Logger) *Pipeline {
	if log == nil {
		log = logger.Get()
	}
	return &Pipeline{
		sleep: sleepContext,
		log:   log.Component("delivery"),
	}
}

// SetSleep overrides the sleep function (e.g. for testing).
func (p *Pipeline) SetSleep(fn SleepFunc) {
	p.sleep = fn
}

// Run delivers every group in order: announce, members, divider.
// A rate-limited item is retried after the mandated wait until it succeeds or fails
// with another error. Any other delivery error counts as failed and the run moves on.
// Only ctx cancellation stops a run early; items not attempted by then are
// neither delivered nor failed.
func (p *Pipeline) Run(ctx context.Context, groups []organizer.EpisodeGroup, opts session.Options, target Target) Report {
	started := time.Now()
	var rep Report

	for _, g := range groups {
		if ctx.Err() != nil {
			break
		}
		rep.Groups++

		if err := p.withBackoff(ctx, &rep, func() error { return target.Announce(ctx, g.Episode) }); err != nil {
			p.log.Warn().Err(err).Str("episode", g.Episode).Msg("announce failed")
		}

		for _, item := range g.Members {
			if ctx.Err() != nil {
				break
			}
			err := p.withBackoff(ctx, &rep, func() error { return target.Deliver(ctx, item, opts) })
			if err != nil {
				if ctx.Err() != nil {
					// interrupted, not failed
					break
				}
				rep.Failed++
				p.log.Error().Err(err).
					Str("episode", g.Episode).
					Int64("chat_id", item.Source.ChatID).
					Int("message_id", item.Source.MessageID).
					Msg("item delivery failed")
				continue
			}
			rep.Delivered++
		}

		if ctx.Err() != nil {
			break
		}
		if err := p.withBackoff(ctx, &rep, func() error { return target.Divider(ctx) }); err != nil {
			p.log.Warn().Err(err).Str("episode", g.Episode).Msg("divider failed")
		}
	}

	rep.Duration = time.Since(started)
	p.log.Info().
		Int("groups", rep.Groups).
		Int("delivered", rep.Delivered).
		Int("failed", rep.Failed).
		Int("rate_limited", rep.RateLimited).
		Dur("duration", rep.Duration).
		Bool("interrupted", ctx.Err() != nil).
		Msg("run finished")
	return rep
}

// withBackoff runs fn, sleeping and retrying for as long as it reports a rate limit.
func (p *Pipeline) withBackoff(ctx context.Context, rep *Report, fn func() error) error {
	for {
		err := fn()
		rl, ok := AsRateLimit(err)
		if !ok {
			return err
		}

		rep.RateLimited++
		p.log.Warn().Dur("wait", rl.Wait).Msg("rate limited, pausing")
		if serr := p.sleep(ctx, rl.Wait); serr != nil {
			return serr
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
