package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gotd/td/tg"

	"github.com/blockedby/episode-relay/internal/session"
)

// errors
var (
	ErrDestinationInaccessible = errors.New("destination is not accessible")
	ErrNotAuthorized           = errors.New("telegram client not authorized")
	ErrUnsupportedMedia        = errors.New("message has no resendable media")
)

// botAPIChannelOffset is added (negated) to channel ids in the bot API "-100..." form.
const botAPIChannelOffset = 1_000_000_000_000

// API is the subset of *tg.Client the bot uses.
type API interface {
	ContactsResolveUsername(ctx context.Context, request *tg.ContactsResolveUsernameRequest) (*tg.ContactsResolvedPeer, error)
	ChannelsGetChannels(ctx context.Context, id []tg.InputChannelClass) (tg.MessagesChatsClass, error)
	MessagesGetChats(ctx context.Context, id []int64) (tg.MessagesChatsClass, error)
	MessagesGetMessages(ctx context.Context, id []tg.InputMessageClass) (tg.MessagesMessagesClass, error)
	MessagesForwardMessages(ctx context.Context, request *tg.MessagesForwardMessagesRequest) (tg.UpdatesClass, error)
	MessagesSendMedia(ctx context.Context, request *tg.MessagesSendMediaRequest) (tg.UpdatesClass, error)
	MessagesSendMessage(ctx context.Context, request *tg.MessagesSendMessageRequest) (tg.UpdatesClass, error)
}

// PeerResolver maps a chat id seen in an update to an input peer.
// gotgproto's peer storage satisfies it.
type PeerResolver interface {
	GetInputPeerById(id int64) tg.InputPeerClass
}

// DestinationRef is a parsed /setchannel argument.
type DestinationRef struct {
	Username string // set for @name references, without the @
	ID       int64  // raw peer id, channel ids with the -100 prefix removed
}

// ParseDestinationRef accepts "@name", "name", "-100123...", "123...".
func ParseDestinationRef(ref string) (DestinationRef, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return DestinationRef{}, fmt.Errorf("empty destination: %w", ErrDestinationInaccessible)
	}

	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		name := strings.TrimPrefix(ref, "@")
		name = strings.TrimPrefix(name, "https://t.me/")
		name = strings.TrimPrefix(name, "t.me/")
		if name == "" || strings.ContainsAny(name, " /") {
			return DestinationRef{}, fmt.Errorf("invalid destination %q: %w", ref, ErrDestinationInaccessible)
		}
		return DestinationRef{Username: name}, nil
	}

	switch {
	case id <= -botAPIChannelOffset:
		id = -id - botAPIChannelOffset
	case id < 0:
		id = -id
	}
	if id == 0 {
		return DestinationRef{}, fmt.Errorf("invalid destination %q: %w", ref, ErrDestinationInaccessible)
	}
	return DestinationRef{ID: id}, nil
}

// InputPeer builds the peer for a resolved destination.
func InputPeer(d *session.Destination) tg.InputPeerClass {
	if d.IsChannel {
		return &tg.InputPeerChannel{ChannelID: d.ID, AccessHash: d.AccessHash}
	}
	return &tg.InputPeerChat{ChatID: d.ID}
}

// destinationFromChat converts a chat returned by the API.
func destinationFromChat(c tg.ChatClass) (*session.Destination, bool) {
	switch ch := c.(type) {
	case *tg.Channel:
		return &session.Destination{ID: ch.ID, AccessHash: ch.AccessHash, Title: ch.Title, IsChannel: true}, true
	case *tg.Chat:
		return &session.Destination{ID: ch.ID, Title: ch.Title}, true
	default:
		return nil, false
	}
}
