package bot

import (
	"strings"

	"github.com/gotd/td/tg"

	"github.com/blockedby/episode-relay/internal/session"
)

// candidateFromMessage describes an inbound media message. ok is false for
// messages without collectable media (stickers, polls, web pages...).
func candidateFromMessage(chatID int64, msg *tg.Message) (session.Candidate, bool) {
	if msg == nil || msg.Media == nil {
		return session.Candidate{}, false
	}

	c := session.Candidate{
		Source:  session.SourceLocation{ChatID: chatID, MessageID: msg.ID},
		Caption: msg.Message,
	}

	switch m := msg.Media.(type) {
	case *tg.MessageMediaPhoto:
		c.Kind = session.KindPhoto
	case *tg.MessageMediaDocument:
		doc, ok := m.Document.(*tg.Document)
		if !ok {
			return session.Candidate{}, false
		}
		kind, name, ok := documentKind(doc)
		if !ok {
			return session.Candidate{}, false
		}
		c.Kind, c.FileName = kind, name
	default:
		return session.Candidate{}, false
	}
	return c, true
}

func documentKind(doc *tg.Document) (session.MediaKind, string, bool) {
	kind := session.KindDocument
	var name string
	for _, attr := range doc.Attributes {
		switch a := attr.(type) {
		case *tg.DocumentAttributeFilename:
			name = a.FileName
		case *tg.DocumentAttributeVideo:
			if !a.RoundMessage {
				kind = session.KindVideo
			}
		case *tg.DocumentAttributeAudio:
			if !a.Voice {
				kind = session.KindAudio
			}
		case *tg.DocumentAttributeSticker, *tg.DocumentAttributeAnimated:
			return "", "", false
		}
	}
	if kind == session.KindDocument && strings.HasPrefix(doc.MimeType, "video/") {
		kind = session.KindVideo
	}
	return kind, name, true
}

// commandArgs returns the text after the command word ("/setchannel@bot  @x" -> "@x").
func commandArgs(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	idx := strings.IndexAny(text, " \t\n")
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(text[idx:])
}
