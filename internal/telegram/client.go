// Package telegram provides the Telegram bot client wrapper.
package telegram

import (
	"context"
	"fmt"
	"math/rand/v2"
	"unicode/utf16"

	"github.com/gotd/td/tg"

	"github.com/blockedby/episode-relay/internal/logger"
	"github.com/blockedby/episode-relay/internal/session"
)

// Client wraps the bot's API connection and provides high-level telegram operations.
type Client struct {
	api         func() (API, PeerResolver, error)
	rateLimiter *RateLimiter
	log         *logger.Logger
}

// NewClient creates a client backed by the manager's live connection.
func NewClient(manager *Manager, rl *RateLimiter) *Client {
	return newClient(func() (API, PeerResolver, error) {
		proto := manager.GetClient()
		if proto == nil {
			return nil, nil, ErrNotAuthorized
		}
		return proto.API(), proto.PeerStorage, nil
	}, rl)
}

// NewClientWithAPI creates a client over a fixed API and peer resolver.
func NewClientWithAPI(api API, peers PeerResolver, rl *RateLimiter) *Client {
	return newClient(func() (API, PeerResolver, error) {
		return api, peers, nil
	}, rl)
}

func newClient(api func() (API, PeerResolver, error), rl *RateLimiter) *Client {
	if rl == nil {
		rl = DefaultRateLimiter()
	}
	return &Client{
		api:         api,
		rateLimiter: rl,
		log:         logger.Get().Component("telegram"),
	}
}

// Peer resolves a chat id seen in an update.
func (c *Client) Peer(chatID int64) (tg.InputPeerClass, error) {
	_, peers, err := c.api()
	if err != nil {
		return nil, err
	}
	p := peers.GetInputPeerById(chatID)
	if p == nil {
		return nil, fmt.Errorf("unknown peer %d", chatID)
	}
	if _, empty := p.(*tg.InputPeerEmpty); empty {
		return nil, fmt.Errorf("unknown peer %d", chatID)
	}
	return p, nil
}

// SendText sends a plain text message to the chat.
func (c *Client) SendText(ctx context.Context, chatID int64, text string) error {
	peer, err := c.Peer(chatID)
	if err != nil {
		return err
	}
	return c.sendText(ctx, peer, text, nil)
}

func (c *Client) sendText(ctx context.Context, peer tg.InputPeerClass, text string, entities []tg.MessageEntityClass) error {
	api, _, err := c.api()
	if err != nil {
		return err
	}
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return err
	}

	_, err = api.MessagesSendMessage(ctx, &tg.MessagesSendMessageRequest{
		Peer:     peer,
		Message:  text,
		RandomID: rand.Int64(),
		Entities: entities,
	})
	if err != nil {
		return asDeliveryError(fmt.Errorf("send message: %w", err))
	}
	return nil
}

// ResolveDestination validates a /setchannel argument and returns the destination
// it refers to. Any failure is reported as ErrDestinationInaccessible.
func (c *Client) ResolveDestination(ctx context.Context, ref string) (*session.Destination, error) {
	parsed, err := ParseDestinationRef(ref)
	if err != nil {
		return nil, err
	}

	api, peers, err := c.api()
	if err != nil {
		return nil, err
	}

	c.log.Debug().Str("ref", ref).Msg("waiting for rate limiter")
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	var dest *session.Destination
	if parsed.Username != "" {
		dest, err = c.resolveUsername(ctx, api, parsed.Username)
	} else {
		dest, err = c.resolveID(ctx, api, peers, parsed.ID)
	}
	if err != nil {
		if wait := floodWait(err); wait > 0 {
			c.log.Warn().Dur("wait", wait).Msg("FLOOD_WAIT detected, updating rate limiter")
			c.rateLimiter.SetFloodWait(wait)
		}
		c.log.Warn().Err(err).Str("ref", ref).Msg("failed to resolve destination")
		return nil, fmt.Errorf("resolve %s: %w: %w", ref, ErrDestinationInaccessible, err)
	}

	c.log.Info().Int64("id", dest.ID).Str("title", dest.Title).Msg("destination resolved")
	return dest, nil
}

func (c *Client) resolveUsername(ctx context.Context, api API, username string) (*session.Destination, error) {
	resolved, err := api.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{
		Username: username,
	})
	if err != nil {
		return nil, fmt.Errorf("resolve username %s: %w", username, err)
	}

	for _, chat := range resolved.Chats {
		if dest, ok := destinationFromChat(chat); ok {
			return dest, nil
		}
	}
	return nil, fmt.Errorf("not a channel or group: %s", username)
}

func (c *Client) resolveID(ctx context.Context, api API, peers PeerResolver, id int64) (*session.Destination, error) {
	var chats tg.MessagesChatsClass
	var err error

	switch p := lookupPeer(peers, id).(type) {
	case *tg.InputPeerChannel:
		chats, err = api.ChannelsGetChannels(ctx, []tg.InputChannelClass{
			&tg.InputChannel{ChannelID: p.ChannelID, AccessHash: p.AccessHash},
		})
	case *tg.InputPeerChat:
		chats, err = api.MessagesGetChats(ctx, []int64{p.ChatID})
	default:
		// not in the peer cache; a basic group id still works without an access hash
		chats, err = api.MessagesGetChats(ctx, []int64{id})
	}
	if err != nil {
		return nil, fmt.Errorf("get chat %d: %w", id, err)
	}

	for _, chat := range chats.GetChats() {
		if dest, ok := destinationFromChat(chat); ok {
			return dest, nil
		}
	}
	return nil, fmt.Errorf("chat %d not found", id)
}

// lookupPeer tries the raw id and the bot API forms of it.
func lookupPeer(peers PeerResolver, id int64) tg.InputPeerClass {
	for _, key := range []int64{id, -botAPIChannelOffset - id, -id} {
		switch p := peers.GetInputPeerById(key).(type) {
		case nil, *tg.InputPeerEmpty:
			continue
		default:
			return p
		}
	}
	return &tg.InputPeerEmpty{}
}

// bold returns a bold entity covering the whole text. Offsets count UTF-16 units.
func bold(text string) []tg.MessageEntityClass {
	n := len(utf16.Encode([]rune(text)))
	if n == 0 {
		return nil
	}
	return []tg.MessageEntityClass{&tg.MessageEntityBold{Offset: 0, Length: n}}
}
