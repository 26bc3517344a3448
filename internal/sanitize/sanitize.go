// Package sanitize removes promotional noise from captions and composes the
// captions used when media is resent.
//
// Only platform mentions and promotional boilerplate lines are removed. Bracketed
// quality and episode tokens such as [720p] or [E05] are never stripped.
package sanitize

import (
	"regexp"
	"strings"
)

// DefaultPromoPhrases mark a caption line as promotional boilerplate.
var DefaultPromoPhrases = []string{
	"powered by",
	"join our channel",
	"join us",
	"join now",
	"official channel",
	"main channel",
	"backup channel",
	"uploaded by",
	"subscribe",
	"for more updates",
}

var (
	bracketedMention = regexp.MustCompile(`\[@[A-Za-z0-9_.]+\]`)
	mention          = regexp.MustCompile(`@[A-Za-z0-9_.]+`)
	keptToken        = regexp.MustCompile(`(?i)\[\s*(?:480p|720p|1080p|1440p|2160p|4k|S(?:eason)?\s*\d{1,3}(?:\s*[._-]?\s*EP?\s*\d{1,4})?|E(?:P|pisode)?\s*\d{1,4})\s*\]`)
	extension        = regexp.MustCompile(`(?i)\.(?:mkv|mp4|avi|mov|webm)$`)
)

// Sanitizer removes mentions and promotional lines using a configurable phrase list.
type Sanitizer struct {
	promo *regexp.Regexp // nil when no phrase is usable
	// resend caption decoration
	captionText     string
	captionPosition CaptionPosition
}

// New creates a sanitizer. An empty phrase list uses DefaultPromoPhrases.
func New(phrases []string) *Sanitizer {
	if len(phrases) == 0 {
		phrases = DefaultPromoPhrases
	}
	alts := make([]string, 0, len(phrases))
	for _, p := range phrases {
		words := strings.Fields(p)
		if len(words) == 0 {
			continue
		}
		for i, w := range words {
			words[i] = regexp.QuoteMeta(w)
		}
		alts = append(alts, strings.Join(words, `\s+`))
	}
	s := &Sanitizer{}
	if len(alts) > 0 {
		// phrases match whole words only
		s.promo = regexp.MustCompile(`(?i)(?:^|[^\pL\pN])(?:` + strings.Join(alts, "|") + `)(?:[^\pL\pN]|$)`)
	}
	return s
}

var defaultSanitizer = New(nil)

// Tags sanitizes text with the default phrase list.
func Tags(text string) string {
	return defaultSanitizer.Clean(text)
}

// Clean removes mentions and promo lines. Each line is judged on its own and has
// its whitespace collapsed; blank lines are dropped and the rest stay on separate
// lines, so Clean(Clean(x)) == Clean(x).
func (s *Sanitizer) Clean(text string) string {
	lines := strings.Split(StripMentions(text), "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = collapse(line)
		if s.isPromo(line) {
			// quality and episode tokens survive the promo line they sat on
			line = strings.Join(keptToken.FindAllString(line, -1), " ")
		}
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func (s *Sanitizer) isPromo(line string) bool {
	return s.promo != nil && s.promo.MatchString(line)
}

// StripMentions removes @handle and [@handle] tokens without touching other brackets.
func StripMentions(text string) string {
	for {
		next := mention.ReplaceAllString(bracketedMention.ReplaceAllString(text, ""), "")
		if next == text {
			return next
		}
		text = next
	}
}

// StripExtension removes a trailing video container extension.
func StripExtension(text string) string {
	return strings.TrimSpace(extension.ReplaceAllString(strings.TrimSpace(text), ""))
}

func collapse(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
