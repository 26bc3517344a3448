// Package metadata extracts structured episode information from free-text
// captions and filenames.
//
// Extraction is a pure function. Season/episode markers are matched against a
// fixed priority table (SeasonEpisodePatterns); the first pattern that matches
// wins, even if a later pattern would match a longer span. When no
// season/episode marker is present an episode-only marker is tried. Text with
// no episode marker at all does not produce metadata.
package metadata

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNoMatch is returned when the text carries no episode marker.
var ErrNoMatch = errors.New("no episode detected")

// UnknownSeries is used when no series name survives cleanup.
const UnknownSeries = "Unknown"

// Quality is a resolution token.
type Quality string

// Known qualities. The 4k token is normalized to Quality2160p.
const (
	QualityUnknown Quality = "Unknown"
	Quality480p    Quality = "480p"
	Quality720p    Quality = "720p"
	Quality1080p   Quality = "1080p"
	Quality1440p   Quality = "1440p"
	Quality2160p   Quality = "2160p"
)

var qualityRanks = map[Quality]int{
	QualityUnknown: 0,
	Quality480p:    1,
	Quality720p:    2,
	Quality1080p:   3,
	Quality1440p:   4,
	Quality2160p:   5,
}

// Rank orders qualities cheapest first. Unrecognized values rank as Unknown.
func (q Quality) Rank() int {
	return qualityRanks[q]
}

func (q Quality) String() string {
	if q == "" {
		return string(QualityUnknown)
	}
	return string(q)
}

// ParseQuality maps a resolution token (case-insensitive) to a Quality.
func ParseQuality(token string) Quality {
	t := strings.ToLower(strings.TrimSpace(token))
	if t == "4k" {
		return Quality2160p
	}
	q := Quality(t)
	if _, ok := qualityRanks[q]; ok && q != QualityUnknown {
		return q
	}
	return QualityUnknown
}

// FileMetadata is the structured result of a successful extraction.
type FileMetadata struct {
	Series  string  // sanitized, UnknownSeries when nothing usable remained
	Season  string  // two-digit code, empty when the text had no season marker
	Episode string  // two-digit code, always set on valid metadata
	Quality Quality // QualityUnknown when no resolution token was found
}

// Valid reports whether the metadata carries an episode code.
func (m FileMetadata) Valid() bool {
	return m.Episode != ""
}

// Label renders the release-style marker, e.g. S01E03 or E03.
func (m FileMetadata) Label() string {
	if m.Season != "" {
		return "S" + m.Season + "E" + m.Episode
	}
	return "E" + m.Episode
}

// EpisodeNumber returns the numeric value of the episode code.
func (m FileMetadata) EpisodeNumber() int {
	n, err := strconv.Atoi(m.Episode)
	if err != nil {
		return 0
	}
	return n
}

// padCode normalizes a numeric marker to at least two digits: "3" -> "03", "003" -> "03", "120" -> "120".
func padCode(raw string) string {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return raw
	}
	return fmt.Sprintf("%02d", n)
}
