package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockedby/episode-relay/internal/config"
	"github.com/blockedby/episode-relay/internal/delivery"
	"github.com/blockedby/episode-relay/internal/sanitize"
	"github.com/blockedby/episode-relay/internal/session"
)

func collected(msgID int, caption, fileName string) session.CollectedItem {
	return session.CollectedItem{
		Source:   session.SourceLocation{ChatID: operatorChat, MessageID: msgID},
		Kind:     session.KindDocument,
		Caption:  caption,
		FileName: fileName,
	}
}

func documentMessage(msgID int) *tg.MessagesMessages {
	return &tg.MessagesMessages{Messages: []tg.MessageClass{
		&tg.Message{
			ID: msgID,
			Media: &tg.MessageMediaDocument{
				Document: &tg.Document{ID: 900, AccessHash: 901, FileReference: []byte{1, 2}},
			},
		},
	}}
}

func TestTarget_ForwardMode(t *testing.T) {
	api := &fakeAPI{}
	client := newFakeClient(api, nil)
	dest := &session.Destination{ID: 1234, AccessHash: 77, IsChannel: true}

	target, err := client.NewTarget(dest, operatorChat, "", nil)
	require.NoError(t, err)

	err = target.Deliver(context.Background(), collected(42, "Show E01", ""), session.Options{ForwardMode: true})
	require.NoError(t, err)

	require.Len(t, api.forwards, 1)
	req := api.forwards[0]
	assert.Equal(t, []int{42}, req.ID)
	assert.Len(t, req.RandomID, 1)
	assert.Equal(t, &tg.InputPeerUser{UserID: operatorChat, AccessHash: 99}, req.FromPeer)
	assert.Equal(t, &tg.InputPeerChannel{ChannelID: 1234, AccessHash: 77}, req.ToPeer)
	assert.Empty(t, api.media)
}

func TestTarget_ResendWithCleanedCaption(t *testing.T) {
	api := &fakeAPI{messages: documentMessage(42)}
	client := newFakeClient(api, nil)

	target, err := client.NewTarget(nil, operatorChat, "", nil)
	require.NoError(t, err)

	item := collected(42, "", "Show_S01E02_720p.mkv")
	require.NoError(t, target.Deliver(context.Background(), item, session.Options{}))

	require.Len(t, api.media, 1)
	req := api.media[0]
	assert.Equal(t, "Show.S01E02.720p", req.Message)
	assert.Equal(t, &tg.InputPeerUser{UserID: operatorChat, AccessHash: 99}, req.Peer, "nil destination delivers to the operator")

	media, ok := req.Media.(*tg.InputMediaDocument)
	require.True(t, ok)
	assert.Equal(t, &tg.InputDocument{ID: 900, AccessHash: 901, FileReference: []byte{1, 2}}, media.ID)

	require.Len(t, req.Entities, 1)
	assert.Equal(t, &tg.MessageEntityBold{Offset: 0, Length: len("Show.S01E02.720p")}, req.Entities[0])
}

func TestTarget_ResendTagRemove(t *testing.T) {
	api := &fakeAPI{messages: documentMessage(7)}
	client := newFakeClient(api, nil)
	target, err := client.NewTarget(nil, operatorChat, "", nil)
	require.NoError(t, err)

	item := collected(7, "Show S01E03 [720p] @leakers\nJoin our channel @leakers", "")
	require.NoError(t, target.Deliver(context.Background(), item, session.Options{TagRemove: true}))

	require.Len(t, api.media, 1)
	assert.Equal(t, "Show S01E03 [720p]", api.media[0].Message)
}

func TestTarget_ResendCaptionText(t *testing.T) {
	api := &fakeAPI{messages: documentMessage(7)}
	client := newFakeClient(api, nil)
	s := sanitize.New(nil).WithCaptionText("via relay", sanitize.CaptionTop)
	target, err := client.NewTarget(nil, operatorChat, "", s)
	require.NoError(t, err)

	require.NoError(t, target.Deliver(context.Background(), collected(7, "Show S01E03.mkv", ""), session.Options{}))
	require.NoError(t, target.Deliver(context.Background(), collected(7, "Show S01E04", ""), session.Options{ForwardMode: true}))

	require.Len(t, api.media, 1)
	assert.Equal(t, "via relay\nShow S01E03", api.media[0].Message)
	require.Len(t, api.forwards, 1, "forwarded items keep their own caption")
}

func TestTarget_ResendPhoto(t *testing.T) {
	api := &fakeAPI{messages: &tg.MessagesMessagesSlice{Messages: []tg.MessageClass{
		&tg.Message{ID: 3, Media: &tg.MessageMediaPhoto{Photo: &tg.Photo{ID: 1, AccessHash: 2}}},
	}}}
	client := newFakeClient(api, nil)
	target, err := client.NewTarget(nil, operatorChat, "", nil)
	require.NoError(t, err)

	require.NoError(t, target.Deliver(context.Background(), collected(3, "Poster E01", ""), session.Options{}))
	require.Len(t, api.media, 1)
	_, ok := api.media[0].Media.(*tg.InputMediaPhoto)
	assert.True(t, ok)
}

func TestTarget_UnsupportedMedia(t *testing.T) {
	api := &fakeAPI{messages: &tg.MessagesMessages{Messages: []tg.MessageClass{
		&tg.Message{ID: 5, Media: &tg.MessageMediaGeo{}},
	}}}
	client := newFakeClient(api, nil)
	target, err := client.NewTarget(nil, operatorChat, "", nil)
	require.NoError(t, err)

	err = target.Deliver(context.Background(), collected(5, "E01", ""), session.Options{})
	assert.ErrorIs(t, err, ErrUnsupportedMedia)

	err = target.Deliver(context.Background(), collected(6, "E01", ""), session.Options{})
	assert.Error(t, err, "missing source message")
}

func TestTarget_FloodWaitBecomesRateLimit(t *testing.T) {
	api := &fakeAPI{forwardErr: tgerr.New(420, "FLOOD_WAIT_5")}
	client := newFakeClient(api, nil)
	target, err := client.NewTarget(nil, operatorChat, "", nil)
	require.NoError(t, err)

	err = target.Deliver(context.Background(), collected(1, "E01", ""), session.Options{ForwardMode: true})

	rl, ok := delivery.AsRateLimit(err)
	require.True(t, ok)
	assert.Equal(t, 5*time.Second, rl.Wait)
}

func TestTarget_AnnounceAndDivider(t *testing.T) {
	t.Run("announce is bold", func(t *testing.T) {
		api := &fakeAPI{}
		target, err := newFakeClient(api, nil).NewTarget(nil, operatorChat, "", nil)
		require.NoError(t, err)

		require.NoError(t, target.Announce(context.Background(), "03"))
		require.Len(t, api.texts, 1)
		assert.Equal(t, "🎬 Episode 03", api.texts[0].Message)
		assert.Len(t, api.texts[0].Entities, 1)
	})

	t.Run("sticker divider", func(t *testing.T) {
		api := &fakeAPI{}
		target, err := newFakeClient(api, nil).NewTarget(nil, operatorChat, config.DefaultDividerSticker, nil)
		require.NoError(t, err)

		require.NoError(t, target.Divider(context.Background()))
		require.Len(t, api.media, 1)
		media, ok := api.media[0].Media.(*tg.InputMediaDocument)
		require.True(t, ok)
		doc, ok := media.ID.(*tg.InputDocument)
		require.True(t, ok)
		assert.NotZero(t, doc.ID)
		assert.Empty(t, api.media[0].Message)
	})

	t.Run("undecodable sticker falls back to text", func(t *testing.T) {
		api := &fakeAPI{}
		target, err := newFakeClient(api, nil).NewTarget(nil, operatorChat, "not-a-file-id", nil)
		require.NoError(t, err)

		require.NoError(t, target.Divider(context.Background()))
		assert.Empty(t, api.media)
		require.Len(t, api.texts, 1)
		assert.Equal(t, textDivider, api.texts[0].Message)
	})

	t.Run("sticker send error surfaces", func(t *testing.T) {
		api := &fakeAPI{sendMediaFn: func(*tg.MessagesSendMediaRequest) error { return errors.New("STICKER_INVALID") }}
		target, err := newFakeClient(api, nil).NewTarget(nil, operatorChat, config.DefaultDividerSticker, nil)
		require.NoError(t, err)

		assert.Error(t, target.Divider(context.Background()))
	})
}

func TestNewTarget_UnknownOperatorChat(t *testing.T) {
	client := NewClientWithAPI(&fakeAPI{}, fakePeers{}, NewRateLimiter(0, 0))

	_, err := client.NewTarget(nil, 123, "", nil)
	assert.Error(t, err)
}
