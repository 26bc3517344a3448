package sanitize

import (
	"fmt"
	"strings"
)

// CaptionPosition places the configured caption text relative to the media caption.
type CaptionPosition string

const (
	CaptionTop     CaptionPosition = "top"
	CaptionBottom  CaptionPosition = "bottom"
	CaptionReplace CaptionPosition = "replace"
)

// ParseCaptionPosition validates a position name. Empty means bottom.
func ParseCaptionPosition(s string) (CaptionPosition, error) {
	switch p := CaptionPosition(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return CaptionBottom, nil
	case CaptionTop, CaptionBottom, CaptionReplace:
		return p, nil
	default:
		return "", fmt.Errorf("unknown caption position %q", s)
	}
}

// WithCaptionText returns a copy of s that adds text to every resend caption.
func (s *Sanitizer) WithCaptionText(text string, pos CaptionPosition) *Sanitizer {
	c := *s
	c.captionText = strings.TrimSpace(text)
	c.captionPosition = pos
	return &c
}

// Caption composes the text attached to resent media. The caption is used when
// present, otherwise the filename with underscores turned into dots. Tags are
// removed when tagRemove is set and the container extension is always dropped.
// Configured caption text is then placed above, below or instead of the result.
// Emphasis is applied by the transport.
func (s *Sanitizer) Caption(caption, fileName string, tagRemove bool) string {
	text := strings.TrimSpace(caption)
	if text == "" {
		text = strings.ReplaceAll(strings.TrimSpace(fileName), "_", ".")
	}
	if tagRemove {
		text = s.Clean(text)
	}
	return s.decorate(StripExtension(text))
}

func (s *Sanitizer) decorate(text string) string {
	if s.captionText == "" {
		return text
	}
	switch s.captionPosition {
	case CaptionReplace:
		return s.captionText
	case CaptionTop:
		return joinLines(s.captionText, text)
	default:
		return joinLines(text, s.captionText)
	}
}

func joinLines(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	return a + "\n" + b
}

// Caption composes a resend caption with the default phrase list.
func Caption(caption, fileName string, tagRemove bool) string {
	return defaultSanitizer.Caption(caption, fileName, tagRemove)
}
