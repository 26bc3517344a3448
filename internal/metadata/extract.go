package metadata

import (
	"regexp"
	"strings"

	"github.com/blockedby/episode-relay/internal/sanitize"
)

// Pattern is one entry of the season/episode priority table.
type Pattern struct {
	Name string
	rx   *regexp.Regexp
}

// SeasonEpisodePatterns lists the season+episode grammars in priority order.
// Capture group 1 is the season, group 2 the episode.
var SeasonEpisodePatterns = []Pattern{
	{"bracketed-pair", regexp.MustCompile(`(?i)\[\s*S(?:eason)?\s*(\d{1,3})\s*\]\s*\[\s*E(?:P|pisode)?\s*(\d{1,4})\s*\]`)}, // [S01][E03]
	{"bracketed", regexp.MustCompile(`(?i)\[\s*S(\d{1,3})\s*[._-]?\s*EP?\s*(\d{1,4})\s*\]`)},                             // [S01 E03]
	{"bare", regexp.MustCompile(`(?i)\bS(\d{1,3})[\s._]*EP?(\d{1,4})\b`)},                                                // S01E03, S01 E03
	{"dashed", regexp.MustCompile(`(?i)\bS(\d{1,3})\s*-\s*EP?(\d{1,4})\b`)},                                              // S01-E03
	{"words", regexp.MustCompile(`(?i)\bSeason\s*(\d{1,3})\s*[,:.\-]?\s*Episode\s*(\d{1,4})\b`)},                         // Season 1 Episode 3
}

// EpisodeOnlyPattern is the fallback when no season marker is present. Group 1 is the episode.
var EpisodeOnlyPattern = Pattern{"episode-only", regexp.MustCompile(`(?i)\b(?:Episode|EP|E)\s*[-:.]?\s*(\d{1,4})\b`)}

var qualityPattern = regexp.MustCompile(`(?i)\b(480p|720p|1080p|1440p|2160p|4k)\b`)

// series cleanup
var (
	bracketedToken  = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)|\{[^}]*\}`)
	linkToken       = regexp.MustCompile(`(?i)(?:https?://|www\.|t\.me/)\S*`)
	releaseJunk     = regexp.MustCompile(`(?i)\b(?:x264|x265|h\.?264|h\.?265|hevc|avc|10bit|8bit|aac|ac3|ddp?5\.1|web-?dl|web-?rip|bluray|blu-ray|brrip|bdrip|hdrip|hdtv|dvdrip|remux|esub|esubs|multi|dual audio)\b`)
	promoKeyword    = regexp.MustCompile(`(?i)\b(?:powered by|uploaded by|encoded by|presented by|join(?: us| now)?|official|channel|telegram|subscribe)\b`)
	decorativePunct = regexp.MustCompile("[._\\-|~•★☆✦✧❖◆◇▪►»«:#*+=/\\\\,;!?\"`]+")
)

// Extract parses a single caption or filename.
func Extract(text string) (FileMetadata, error) {
	m, _, err := ExtractWithPattern(text)
	return m, err
}

// ExtractWithPattern is Extract that also reports which grammar matched.
// Underscores separate words, so Show_S01E03_720p reads like Show S01E03 720p.
func ExtractWithPattern(text string) (FileMetadata, string, error) {
	if strings.TrimSpace(text) == "" {
		return FileMetadata{}, "", ErrNoMatch
	}

	// same byte offsets as text; \b treats _ as a word character
	norm := strings.ReplaceAll(text, "_", " ")
	meta := FileMetadata{Quality: findQuality(norm)}

	for _, p := range SeasonEpisodePatterns {
		loc := p.rx.FindStringSubmatchIndex(norm)
		if loc == nil {
			continue
		}
		meta.Season = padCode(text[loc[2]:loc[3]])
		meta.Episode = padCode(text[loc[4]:loc[5]])
		meta.Series = seriesName(text[:loc[0]])
		return meta, p.Name, nil
	}

	loc := EpisodeOnlyPattern.rx.FindStringSubmatchIndex(norm)
	if loc == nil {
		return FileMetadata{}, "", ErrNoMatch
	}
	meta.Episode = padCode(text[loc[2]:loc[3]])
	meta.Series = seriesName(text[:loc[0]] + " " + text[loc[1]:])
	return meta, EpisodeOnlyPattern.Name, nil
}

// ExtractFirst tries each text in order and returns the first successful extraction.
// Callers pass the caption first and the filename as fallback.
func ExtractFirst(texts ...string) (FileMetadata, error) {
	for _, t := range texts {
		if m, err := Extract(t); err == nil {
			return m, nil
		}
	}
	return FileMetadata{}, ErrNoMatch
}

func findQuality(text string) Quality {
	m := qualityPattern.FindStringSubmatch(text)
	if m == nil {
		return QualityUnknown
	}
	return ParseQuality(m[1])
}

// seriesName turns the text around an episode marker into a display name.
func seriesName(raw string) string {
	s := sanitize.StripExtension(raw)
	s = sanitize.StripMentions(s)
	s = strings.ReplaceAll(s, "_", " ")
	s = bracketedToken.ReplaceAllString(s, " ")
	s = linkToken.ReplaceAllString(s, " ")
	s = qualityPattern.ReplaceAllString(s, " ")
	s = releaseJunk.ReplaceAllString(s, " ")
	s = promoKeyword.ReplaceAllString(s, " ")
	s = decorativePunct.ReplaceAllString(s, " ")
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return UnknownSeries
	}
	return s
}
