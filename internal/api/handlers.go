package api

import (
	"strconv"

	"github.com/go-fuego/fuego"

	"github.com/blockedby/episode-relay/internal/history"
)

func (s *Server) healthCheck(c fuego.ContextNoBody) (HealthResponse, error) {
	return HealthResponse{
		Status:   "ok",
		Telegram: string(s.deps.Telegram.GetStatus()),
		Version:  s.version,
	}, nil
}

func (s *Server) getSession(c fuego.ContextNoBody) (SessionResponse, error) {
	var job *JobResponse
	if cur := s.deps.Jobs.Current(); cur != nil {
		job = &JobResponse{ID: cur.ID, StartedAt: cur.StartedAt}
	}
	return SessionFromStatus(s.deps.Session.Snapshot(), job), nil
}

func (s *Server) listRuns(c fuego.ContextNoBody) (RunsResponse, error) {
	if s.deps.Runs == nil {
		return RunsResponse{}, fuego.NotFoundError{Detail: "Run history is disabled"}
	}

	limit := history.DefaultLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return RunsResponse{}, fuego.BadRequestError{Detail: "limit must be a positive integer"}
		}
		limit = n
	}

	runs, err := s.deps.Runs.Recent(c.Context(), limit)
	if err != nil {
		return RunsResponse{}, fuego.InternalServerError{Detail: err.Error()}
	}
	if runs == nil {
		runs = []history.Run{}
	}
	total, err := s.deps.Runs.Count(c.Context())
	if err != nil {
		return RunsResponse{}, fuego.InternalServerError{Detail: err.Error()}
	}

	return RunsResponse{Runs: runs, Count: len(runs), Total: total}, nil
}
