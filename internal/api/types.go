package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/blockedby/episode-relay/internal/history"
	"github.com/blockedby/episode-relay/internal/organizer"
	"github.com/blockedby/episode-relay/internal/session"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status   string `json:"status" example:"ok" description:"Health status"`
	Telegram string `json:"telegram" example:"READY" description:"Bot client status: INITIALIZING, READY, ERROR"`
	Version  string `json:"version" example:"dev" description:"Application version"`
}

// EpisodeSummary lists the qualities collected for one episode.
type EpisodeSummary struct {
	Episode   string   `json:"episode" example:"03" description:"Normalized episode code"`
	Qualities []string `json:"qualities" description:"Collected qualities in delivery order"`
}

// DestinationResponse describes the configured destination.
type DestinationResponse struct {
	ID        int64  `json:"id" description:"Telegram chat id"`
	Title     string `json:"title" description:"Chat title"`
	IsChannel bool   `json:"is_channel" description:"Whether the destination is a channel"`
}

// JobResponse describes the running delivery.
type JobResponse struct {
	ID        uuid.UUID `json:"id" description:"Run identifier"`
	StartedAt time.Time `json:"started_at" description:"When the run started"`
}

// SessionResponse is the read-only view of the collection session.
type SessionResponse struct {
	State       string               `json:"state" example:"COLLECTING" description:"Session state: IDLE or COLLECTING"`
	Count       int                  `json:"count" description:"Number of collected items"`
	Episodes    []EpisodeSummary     `json:"episodes" description:"Collected items grouped by episode"`
	TagRemove   bool                 `json:"tag_remove" description:"Tag removal toggle"`
	ForwardMode bool                 `json:"forward_mode" description:"Forward mode toggle"`
	Destination *DestinationResponse `json:"destination" description:"Delivery destination, null for the operator chat"`
	Running     *JobResponse         `json:"running" description:"Delivery in progress, null when idle"`
}

// RunsResponse lists recent delivery runs.
type RunsResponse struct {
	Runs  []history.Run `json:"runs" description:"Runs, most recent first"`
	Count int           `json:"count" description:"Number of runs returned"`
	Total int64         `json:"total" description:"Number of runs recorded"`
}

// SessionFromStatus converts a session snapshot to the API view.
func SessionFromStatus(st session.Status, job *JobResponse) SessionResponse {
	resp := SessionResponse{
		State:       string(st.State),
		Count:       st.Count,
		Episodes:    []EpisodeSummary{},
		TagRemove:   st.Options.TagRemove,
		ForwardMode: st.Options.ForwardMode,
		Running:     job,
	}
	for _, g := range organizer.Organize(st.Items) {
		sum := EpisodeSummary{Episode: g.Episode, Qualities: []string{}}
		for _, q := range g.Qualities() {
			sum.Qualities = append(sum.Qualities, q.String())
		}
		resp.Episodes = append(resp.Episodes, sum)
	}
	if d := st.Options.Destination; d != nil {
		resp.Destination = &DestinationResponse{ID: d.ID, Title: d.Title, IsChannel: d.IsChannel}
	}
	return resp
}
