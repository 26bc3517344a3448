package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blockedby/episode-relay/internal/metadata"
	"github.com/blockedby/episode-relay/internal/sanitize"
)

func newParseCommand() *cobra.Command {
	var tagRemove bool

	cmd := &cobra.Command{
		Use:   "parse <caption>...",
		Short: "Show the metadata extracted from captions or filenames",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := sanitize.New(nil)
			rows := make([][]string, 0, len(args))
			for _, arg := range args {
				rows = append(rows, parseRow(s, arg, tagRemove))
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Input", "Series", "Season", "Episode", "Quality", "Pattern"},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&tagRemove, "tag-remove", false, "Strip tags and promo lines before extracting")
	return cmd
}

func parseRow(s *sanitize.Sanitizer, input string, tagRemove bool) []string {
	text := input
	if tagRemove {
		text = s.Clean(text)
	}

	meta, pattern, err := metadata.ExtractWithPattern(text)
	if err != nil {
		reason := err.Error()
		if errors.Is(err, metadata.ErrNoMatch) {
			reason = "no episode"
		}
		return []string{input, "-", "-", "-", "-", reason}
	}

	season := meta.Season
	if season == "" {
		season = "-"
	}
	return []string{input, meta.Series, season, meta.Episode, meta.Quality.String(), pattern}
}
