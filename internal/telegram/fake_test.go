package telegram

import (
	"context"
	"errors"

	"github.com/gotd/td/tg"
)

// fakeAPI records requests and returns scripted responses.
type fakeAPI struct {
	resolved    *tg.ContactsResolvedPeer
	resolveErr  error
	channels    tg.MessagesChatsClass
	chats       tg.MessagesChatsClass
	messages    tg.MessagesMessagesClass
	forwardErr  error
	sendMediaFn func(req *tg.MessagesSendMediaRequest) error

	forwards    []*tg.MessagesForwardMessagesRequest
	media       []*tg.MessagesSendMediaRequest
	texts       []*tg.MessagesSendMessageRequest
	gotMessages [][]tg.InputMessageClass
	gotChats    [][]int64
}

func (f *fakeAPI) ContactsResolveUsername(_ context.Context, _ *tg.ContactsResolveUsernameRequest) (*tg.ContactsResolvedPeer, error) {
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	if f.resolved == nil {
		return nil, errors.New("USERNAME_NOT_OCCUPIED")
	}
	return f.resolved, nil
}

func (f *fakeAPI) ChannelsGetChannels(_ context.Context, _ []tg.InputChannelClass) (tg.MessagesChatsClass, error) {
	if f.channels == nil {
		return nil, errors.New("CHANNEL_PRIVATE")
	}
	return f.channels, nil
}

func (f *fakeAPI) MessagesGetChats(_ context.Context, id []int64) (tg.MessagesChatsClass, error) {
	f.gotChats = append(f.gotChats, id)
	if f.chats == nil {
		return nil, errors.New("CHAT_ID_INVALID")
	}
	return f.chats, nil
}

func (f *fakeAPI) MessagesGetMessages(_ context.Context, id []tg.InputMessageClass) (tg.MessagesMessagesClass, error) {
	f.gotMessages = append(f.gotMessages, id)
	if f.messages == nil {
		return &tg.MessagesMessages{}, nil
	}
	return f.messages, nil
}

func (f *fakeAPI) MessagesForwardMessages(_ context.Context, req *tg.MessagesForwardMessagesRequest) (tg.UpdatesClass, error) {
	f.forwards = append(f.forwards, req)
	if f.forwardErr != nil {
		return nil, f.forwardErr
	}
	return &tg.Updates{}, nil
}

func (f *fakeAPI) MessagesSendMedia(_ context.Context, req *tg.MessagesSendMediaRequest) (tg.UpdatesClass, error) {
	f.media = append(f.media, req)
	if f.sendMediaFn != nil {
		if err := f.sendMediaFn(req); err != nil {
			return nil, err
		}
	}
	return &tg.Updates{}, nil
}

func (f *fakeAPI) MessagesSendMessage(_ context.Context, req *tg.MessagesSendMessageRequest) (tg.UpdatesClass, error) {
	f.texts = append(f.texts, req)
	return &tg.Updates{}, nil
}

// fakePeers is a static peer cache.
type fakePeers map[int64]tg.InputPeerClass

func (p fakePeers) GetInputPeerById(id int64) tg.InputPeerClass {
	if peer, ok := p[id]; ok {
		return peer
	}
	return &tg.InputPeerEmpty{}
}

const operatorChat int64 = 555

func newFakeClient(api *fakeAPI, peers fakePeers) *Client {
	if peers == nil {
		peers = fakePeers{}
	}
	if _, ok := peers[operatorChat]; !ok {
		peers[operatorChat] = &tg.InputPeerUser{UserID: operatorChat, AccessHash: 99}
	}
	return NewClientWithAPI(api, peers, NewRateLimiter(0, 0))
}
