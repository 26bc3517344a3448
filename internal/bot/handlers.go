package bot

import (
	"context"
	"fmt"

	"github.com/celestix/gotgproto/dispatcher"
	"github.com/celestix/gotgproto/dispatcher/handlers"
	"github.com/celestix/gotgproto/dispatcher/handlers/filters"
	"github.com/celestix/gotgproto/ext"

	"github.com/blockedby/episode-relay/internal/session"
)

// Dispatcher is the part of the gotgproto dispatcher handlers are registered on.
type Dispatcher interface {
	AddHandler(h dispatcher.Handler)
}

// Handlers binds the controller to gotgproto updates.
type Handlers struct {
	ctrl    *Controller
	ownerID int64 // 0 = anyone in a private chat
}

// NewHandlers creates the update handlers.
func NewHandlers(ctrl *Controller, ownerID int64) *Handlers {
	return &Handlers{ctrl: ctrl, ownerID: ownerID}
}

// Register adds all command and media handlers.
func (h *Handlers) Register(d Dispatcher) {
	commands := map[string]func(ctx context.Context, in incoming) string{
		"start": func(_ context.Context, in incoming) string { return h.ctrl.Start(in.firstName) },
		"help":  func(context.Context, incoming) string { return h.ctrl.Help() },
		"about": func(context.Context, incoming) string { return h.ctrl.About() },

		"collect":   func(context.Context, incoming) string { return h.ctrl.Collect() },
		"clear":     func(context.Context, incoming) string { return h.ctrl.Clear() },
		"status":    func(context.Context, incoming) string { return h.ctrl.Status() },
		"tagremove": func(context.Context, incoming) string { return h.ctrl.ToggleTagRemove() },
		"forward":   func(context.Context, incoming) string { return h.ctrl.ToggleForward() },
		"upload":    func(_ context.Context, in incoming) string { return h.ctrl.Upload(in.chatID) },
		"history":   func(ctx context.Context, _ incoming) string { return h.ctrl.History(ctx) },
		"setchannel": func(ctx context.Context, in incoming) string {
			return h.ctrl.SetChannel(ctx, commandArgs(in.text))
		},
	}

	for name, fn := range commands {
		d.AddHandler(handlers.NewCommand(name, h.wrap(name, fn)))
	}

	d.AddHandler(handlers.NewMessage(filters.Message.Media, h.wrap("media", func(_ context.Context, in incoming) string {
		if in.candidate == nil {
			return ""
		}
		return h.ctrl.Ingest(*in.candidate)
	})))
}

// incoming is the transport-independent view of an update.
type incoming struct {
	chatID    int64
	userID    int64
	private   bool
	firstName string
	text      string
	candidate *session.Candidate
}

// wrap applies the operator gate, recovers from panics and sends the reply.
func (h *Handlers) wrap(name string, fn func(ctx context.Context, in incoming) string) func(*ext.Context, *ext.Update) error {
	return func(ctx *ext.Context, u *ext.Update) error {
		in, ok := fromUpdate(u)
		if !ok {
			return dispatcher.ContinueGroups
		}

		reply := h.handle(ctx.Context, name, in, fn)
		if reply != "" {
			h.ctrl.notify(ctx.Context, in.chatID, reply)
		}
		return dispatcher.EndGroups
	}
}

func (h *Handlers) handle(ctx context.Context, name string, in incoming, fn func(ctx context.Context, in incoming) string) (reply string) {
	if !in.private {
		return ""
	}
	if h.ownerID != 0 && in.userID != h.ownerID {
		h.ctrl.log.Warn().Int64("user_id", in.userID).Str("handler", name).Msg("rejected non-owner")
		return msgNotAllowed
	}

	defer func() {
		if rec := recover(); rec != nil {
			h.ctrl.log.Error().Err(fmt.Errorf("panic: %v", rec)).Str("handler", name).Msg("handler panicked")
			reply = msgInternalError
		}
	}()

	return fn(ctx, in)
}

func fromUpdate(u *ext.Update) (incoming, bool) {
	if u == nil || u.EffectiveMessage == nil || u.EffectiveMessage.Message == nil {
		return incoming{}, false
	}
	msg := u.EffectiveMessage.Message
	chat := u.EffectiveChat()
	if chat == nil {
		return incoming{}, false
	}

	in := incoming{
		chatID:  chat.GetID(),
		private: chat.IsAUser(),
		text:    msg.Message,
	}
	if user := u.EffectiveUser(); user != nil {
		in.userID = user.ID
		in.firstName = user.FirstName
	}
	if c, ok := candidateFromMessage(in.chatID, msg); ok {
		in.candidate = &c
	}
	return in, true
}
