// Package organizer orders collected items for release-style delivery:
// lowest episode first, cheapest quality first within an episode.
package organizer

import (
	"cmp"
	"slices"

	"github.com/samber/lo"

	"github.com/blockedby/episode-relay/internal/metadata"
	"github.com/blockedby/episode-relay/internal/session"
)

// EpisodeGroup is the set of items collected for one episode, in delivery order.
type EpisodeGroup struct {
	Episode string
	Members []session.CollectedItem
}

// Qualities lists the member qualities in delivery order.
func (g EpisodeGroup) Qualities() []metadata.Quality {
	return lo.Map(g.Members, func(it session.CollectedItem, _ int) metadata.Quality {
		return it.Metadata.Quality
	})
}

// Organize groups items by episode code. Groups are ordered by the numeric value of
// the episode ("02" before "10"); members by quality rank, then insertion order.
func Organize(items []session.CollectedItem) []EpisodeGroup {
	if len(items) == 0 {
		return nil
	}

	byEpisode := lo.GroupBy(items, func(it session.CollectedItem) string {
		return it.Metadata.Episode
	})

	keys := lo.Keys(byEpisode)
	slices.SortFunc(keys, func(a, b string) int {
		na := byEpisode[a][0].Metadata.EpisodeNumber()
		nb := byEpisode[b][0].Metadata.EpisodeNumber()
		if c := cmp.Compare(na, nb); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	groups := make([]EpisodeGroup, 0, len(keys))
	for _, ep := range keys {
		members := byEpisode[ep]
		slices.SortStableFunc(members, func(a, b session.CollectedItem) int {
			if c := cmp.Compare(a.Metadata.Quality.Rank(), b.Metadata.Quality.Rank()); c != 0 {
				return c
			}
			return cmp.Compare(a.Seq, b.Seq)
		})
		groups = append(groups, EpisodeGroup{Episode: ep, Members: members})
	}

	return groups
}
