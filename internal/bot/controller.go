// Package bot implements the operator commands on top of the collection session.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blockedby/episode-relay/internal/delivery"
	"github.com/blockedby/episode-relay/internal/history"
	"github.com/blockedby/episode-relay/internal/logger"
	"github.com/blockedby/episode-relay/internal/organizer"
	"github.com/blockedby/episode-relay/internal/publisher"
	"github.com/blockedby/episode-relay/internal/sanitize"
	"github.com/blockedby/episode-relay/internal/session"
	"github.com/blockedby/episode-relay/internal/telegram"
)

// Messenger sends plain text to a chat.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) error
}

// DestinationResolver validates a /setchannel argument.
type DestinationResolver interface {
	ResolveDestination(ctx context.Context, ref string) (*session.Destination, error)
}

// TargetFactory builds the delivery target for a run. dest is nil for the operator chat.
type TargetFactory func(dest *session.Destination, operatorChat int64) (delivery.Target, error)

// RunLog stores finished runs.
type RunLog interface {
	Record(ctx context.Context, run *history.Run) error
	Recent(ctx context.Context, limit int) ([]history.Run, error)
}

// EventPublisher announces finished runs.
type EventPublisher interface {
	PublishRunCompleted(ctx context.Context, event publisher.RunCompletedEvent) error
}

// Deps are the controller's collaborators. History and Events are optional.
type Deps struct {
	Session   *session.Session
	Pipeline  *delivery.Pipeline
	Runner    *delivery.Runner
	Messenger Messenger
	Resolver  DestinationResolver
	Targets   TargetFactory
	History   RunLog
	Events    EventPublisher
	Log       *logger.Logger
}

// Controller turns operator intents into session and delivery operations.
// Every method returns the reply text for the operator.
type Controller struct {
	session   *session.Session
	pipeline  *delivery.Pipeline
	runner    *delivery.Runner
	messenger Messenger
	resolver  DestinationResolver
	targets   TargetFactory
	history   RunLog
	events    EventPublisher
	log       *logger.Logger
}

// NewController creates a controller.
func NewController(d Deps) *Controller {
	log := d.Log
	if log == nil {
		log = logger.Get()
	}
	return &Controller{
		session:   d.Session,
		pipeline:  d.Pipeline,
		runner:    d.Runner,
		messenger: d.Messenger,
		resolver:  d.Resolver,
		targets:   d.Targets,
		history:   d.History,
		events:    d.Events,
		log:       log.Component("bot"),
	}
}

// Start greets the operator.
func (c *Controller) Start(firstName string) string {
	if firstName == "" {
		firstName = "there"
	}
	return fmt.Sprintf(startText, firstName)
}

// Help returns usage instructions.
func (c *Controller) Help() string { return helpText }

// About describes the bot.
func (c *Controller) About() string { return aboutText }

// Collect starts a fresh collection.
func (c *Controller) Collect() string {
	c.session.Start()
	c.log.Info().Msg("collection started")
	return msgCollectStarted
}

// Clear discards the collection. A running upload keeps its own snapshot.
func (c *Controller) Clear() string {
	n := c.session.Clear()
	c.log.Info().Int("removed", n).Msg("collection cleared")
	return fmt.Sprintf("🗑️ Cleared %d files.", n)
}

// Status reports state, counts, per-episode qualities and toggles.
func (c *Controller) Status() string {
	return formatStatus(c.session.Snapshot(), c.runner.Current())
}

// ToggleTagRemove flips tag removal.
func (c *Controller) ToggleTagRemove() string {
	return "🏷️ Tag Remove: " + onOff(c.session.ToggleTagRemove())
}

// ToggleForward flips forward mode.
func (c *Controller) ToggleForward() string {
	return "🔁 Forward Mode: " + onOff(c.session.ToggleForwardMode())
}

// SetChannel validates and stores the destination. An empty argument resets
// delivery to the operator chat. On failure the previous destination is kept.
func (c *Controller) SetChannel(ctx context.Context, arg string) string {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		c.session.SetDestination(nil)
		return "📢 Destination reset to " + operatorChatLabel + "."
	}

	dest, err := c.resolver.ResolveDestination(ctx, arg)
	if err != nil {
		c.log.Warn().Err(err).Str("ref", arg).Msg("set destination failed")
		return fmt.Sprintf(msgSetChannelFailed, arg)
	}

	dest = c.session.SetDestination(dest)
	c.log.Info().Int64("id", dest.ID).Str("title", dest.Title).Msg("destination set")
	return "📢 Destination set: " + destinationLabel(dest)
}

// Ingest offers a media item to the session.
func (c *Controller) Ingest(cand session.Candidate) string {
	item, total, err := c.session.Add(cand)
	switch {
	case errors.Is(err, session.ErrNotCollecting):
		return msgNotCollecting
	case errors.Is(err, session.ErrNoEpisodeDetected):
		c.log.Debug().Str("caption", cand.Caption).Str("file", cand.FileName).Msg("no episode detected")
		return msgNoEpisode
	case err != nil:
		c.log.Error().Err(err).Msg("ingest failed")
		return msgInternalError
	}

	c.log.Debug().
		Str("episode", item.Metadata.Episode).
		Str("quality", item.Metadata.Quality.String()).
		Int("total", total).
		Msg("item collected")
	return formatAdded(item, total)
}

// History lists recent runs.
func (c *Controller) History(ctx context.Context) string {
	if c.history == nil {
		return "🗂 Upload history is disabled."
	}
	runs, err := c.history.Recent(ctx, 5)
	if err != nil {
		c.log.Error().Err(err).Msg("load history failed")
		return msgInternalError
	}
	return formatHistory(runs)
}

// Upload snapshots the collection and delivers it in the background. The final
// report is sent to operatorChat when the run ends.
func (c *Controller) Upload(operatorChat int64) string {
	ready := make(chan runInput, 1)

	_, err := c.runner.Start(func(ctx context.Context, job delivery.Job) {
		c.deliver(ctx, job, operatorChat, <-ready)
	})
	if errors.Is(err, delivery.ErrAlreadyRunning) {
		return msgUploadRunning
	}
	if err != nil {
		c.log.Error().Err(err).Msg("start upload failed")
		return msgInternalError
	}

	// snapshot only once the runner has accepted the job
	in := runInput{opts: c.session.Options()}
	items := c.session.SnapshotAndFinalize()
	in.groups = organizer.Organize(items)
	ready <- in

	return fmt.Sprintf(msgUploadStarted, len(items), len(in.groups))
}

type runInput struct {
	groups []organizer.EpisodeGroup
	opts   session.Options
}

func (c *Controller) deliver(ctx context.Context, job delivery.Job, operatorChat int64, in runInput) {
	opts := in.opts
	run := &history.Run{
		ID:          job.ID,
		StartedAt:   job.StartedAt,
		Destination: destinationLabel(opts.Destination),
		Episodes:    len(in.groups),
		ForwardMode: opts.ForwardMode,
		TagRemove:   opts.TagRemove,
	}

	var reply string
	target, err := c.targets(opts.Destination, operatorChat)
	if err != nil {
		c.log.Error().Err(err).Msg("build delivery target failed")
		run.Error = err.Error()
		reply = fmt.Sprintf(msgUploadFailed, err)
	} else {
		rep := c.pipeline.Run(ctx, in.groups, opts, target)
		run.Delivered = rep.Delivered
		run.Failed = rep.Failed
		run.RateLimited = rep.RateLimited
		reply = formatReport(rep)
	}
	run.FinishedAt = time.Now()

	// a run cut short by shutdown is still recorded and reported
	ctx = context.WithoutCancel(ctx)
	c.recordRun(ctx, run)
	c.notify(ctx, operatorChat, reply)
}

func (c *Controller) recordRun(ctx context.Context, run *history.Run) {
	if c.history != nil {
		if err := c.history.Record(ctx, run); err != nil {
			c.log.Warn().Err(err).Msg("record run failed")
		}
	}
	if c.events != nil {
		err := c.events.PublishRunCompleted(ctx, publisher.RunCompletedEvent{
			RunID:       run.ID,
			Destination: run.Destination,
			Episodes:    run.Episodes,
			Delivered:   run.Delivered,
			Failed:      run.Failed,
			RateLimited: run.RateLimited,
			Duration:    run.Duration(),
			FinishedAt:  run.FinishedAt,
		})
		if err != nil {
			c.log.Warn().Err(err).Msg("publish run event failed")
		}
	}
}

func (c *Controller) notify(ctx context.Context, chatID int64, text string) {
	if c.messenger == nil {
		return
	}
	if err := c.messenger.SendText(ctx, chatID, text); err != nil {
		c.log.Warn().Err(err).Int64("chat_id", chatID).Msg("send reply failed")
	}
}

// TelegramTargets adapts a telegram client into a TargetFactory.
func TelegramTargets(client *telegram.Client, dividerFileID string, s *sanitize.Sanitizer) TargetFactory {
	return func(dest *session.Destination, operatorChat int64) (delivery.Target, error) {
		t, err := client.NewTarget(dest, operatorChat, dividerFileID, s)
		if err != nil {
			return nil, err
		}
		return t, nil
	}
}
