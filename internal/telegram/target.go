package telegram

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/gotd/td/fileid"
	"github.com/gotd/td/tg"

	"github.com/blockedby/episode-relay/internal/delivery"
	"github.com/blockedby/episode-relay/internal/sanitize"
	"github.com/blockedby/episode-relay/internal/session"
)

const textDivider = "━━━━━━━━━━━━━━━"

// Target delivers collected items to one chat. It implements delivery.Target.
type Target struct {
	client    *Client
	to        tg.InputPeerClass
	sticker   *tg.InputDocument // nil = text divider
	sanitizer *sanitize.Sanitizer
}

var _ delivery.Target = (*Target)(nil)

// NewTarget builds a target for dest, or for the operator chat when dest is nil.
// dividerFileID is a bot API sticker file id; an undecodable id falls back to a text divider.
func (c *Client) NewTarget(dest *session.Destination, operatorChat int64, dividerFileID string, s *sanitize.Sanitizer) (*Target, error) {
	var to tg.InputPeerClass
	if dest != nil {
		to = InputPeer(dest)
	} else {
		p, err := c.Peer(operatorChat)
		if err != nil {
			return nil, fmt.Errorf("operator chat: %w", err)
		}
		to = p
	}

	if s == nil {
		s = sanitize.New(nil)
	}

	t := &Target{client: c, to: to, sanitizer: s}
	if dividerFileID != "" {
		doc, err := decodeSticker(dividerFileID)
		if err != nil {
			c.log.Warn().Err(err).Msg("divider sticker unusable, using text divider")
		} else {
			t.sticker = doc
		}
	}
	return t, nil
}

// Announce posts the bold episode header.
func (t *Target) Announce(ctx context.Context, episode string) error {
	text := "🎬 Episode " + episode
	return t.client.sendText(ctx, t.to, text, bold(text))
}

// Divider posts the divider sticker after a group.
func (t *Target) Divider(ctx context.Context) error {
	if t.sticker == nil {
		return t.client.sendText(ctx, t.to, textDivider, nil)
	}
	return t.sendMedia(ctx, &tg.InputMediaDocument{ID: t.sticker}, "")
}

// Deliver forwards the original message or re-sends its media with a cleaned caption.
func (t *Target) Deliver(ctx context.Context, item session.CollectedItem, opts session.Options) error {
	from, err := t.client.Peer(item.Source.ChatID)
	if err != nil {
		return err
	}
	if opts.ForwardMode {
		return t.forward(ctx, from, item.Source.MessageID)
	}

	media, err := t.sourceMedia(ctx, item.Source.MessageID)
	if err != nil {
		return err
	}
	caption := t.sanitizer.Caption(item.Caption, item.FileName, opts.TagRemove)
	return t.sendMedia(ctx, media, caption)
}

func (t *Target) forward(ctx context.Context, from tg.InputPeerClass, msgID int) error {
	api, _, err := t.client.api()
	if err != nil {
		return err
	}
	if err := t.client.rateLimiter.Wait(ctx); err != nil {
		return err
	}

	_, err = api.MessagesForwardMessages(ctx, &tg.MessagesForwardMessagesRequest{
		FromPeer: from,
		ID:       []int{msgID},
		RandomID: []int64{rand.Int64()},
		ToPeer:   t.to,
	})
	if err != nil {
		return asDeliveryError(fmt.Errorf("forward message %d: %w", msgID, err))
	}
	return nil
}

// sourceMedia fetches the original message and turns its media into a re-sendable reference.
func (t *Target) sourceMedia(ctx context.Context, msgID int) (tg.InputMediaClass, error) {
	api, _, err := t.client.api()
	if err != nil {
		return nil, err
	}
	if err := t.client.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	res, err := api.MessagesGetMessages(ctx, []tg.InputMessageClass{&tg.InputMessageID{ID: msgID}})
	if err != nil {
		return nil, asDeliveryError(fmt.Errorf("get message %d: %w", msgID, err))
	}

	var msgs []tg.MessageClass
	switch r := res.(type) {
	case *tg.MessagesMessages:
		msgs = r.Messages
	case *tg.MessagesMessagesSlice:
		msgs = r.Messages
	case *tg.MessagesChannelMessages:
		msgs = r.Messages
	}

	for _, m := range msgs {
		msg, ok := m.(*tg.Message)
		if !ok || msg.ID != msgID {
			continue
		}
		return inputMedia(msg.Media)
	}
	return nil, fmt.Errorf("message %d not found", msgID)
}

func inputMedia(media tg.MessageMediaClass) (tg.InputMediaClass, error) {
	switch m := media.(type) {
	case *tg.MessageMediaDocument:
		if doc, ok := m.Document.(*tg.Document); ok {
			return &tg.InputMediaDocument{ID: doc.AsInput()}, nil
		}
	case *tg.MessageMediaPhoto:
		if photo, ok := m.Photo.(*tg.Photo); ok {
			return &tg.InputMediaPhoto{ID: photo.AsInput()}, nil
		}
	}
	return nil, ErrUnsupportedMedia
}

func (t *Target) sendMedia(ctx context.Context, media tg.InputMediaClass, caption string) error {
	api, _, err := t.client.api()
	if err != nil {
		return err
	}
	if err := t.client.rateLimiter.Wait(ctx); err != nil {
		return err
	}

	_, err = api.MessagesSendMedia(ctx, &tg.MessagesSendMediaRequest{
		Peer:     t.to,
		Media:    media,
		Message:  caption,
		RandomID: rand.Int64(),
		Entities: bold(caption),
	})
	if err != nil {
		return asDeliveryError(fmt.Errorf("send media: %w", err))
	}
	return nil
}

func decodeSticker(fileID string) (*tg.InputDocument, error) {
	id, err := fileid.DecodeFileID(fileID)
	if err != nil {
		return nil, fmt.Errorf("decode file id: %w", err)
	}
	return &tg.InputDocument{
		ID:            id.ID,
		AccessHash:    id.AccessHash,
		FileReference: id.FileReference,
	}, nil
}
