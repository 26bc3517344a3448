package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockedby/episode-relay/internal/delivery"
	"github.com/blockedby/episode-relay/internal/history"
	"github.com/blockedby/episode-relay/internal/session"
	"github.com/blockedby/episode-relay/internal/telegram"
)

// Mock implementations for testing

type mockJobs struct{ job *delivery.Job }

func (m mockJobs) Current() *delivery.Job { return m.job }

type mockTelegram struct{ status telegram.Status }

func (m mockTelegram) GetStatus() telegram.Status { return m.status }

type mockRuns struct {
	runs     []history.Run
	total    int64
	err      error
	countErr error
	gotLimit int
}

func (m *mockRuns) Recent(_ context.Context, limit int) ([]history.Run, error) {
	m.gotLimit = limit
	return m.runs, m.err
}

func (m *mockRuns) Count(_ context.Context) (int64, error) {
	return m.total, m.countErr
}

func newTestServer(s *session.Session, jobs JobReader, runs RunLister) *Server {
	cfg := &Config{Title: "Test API", Description: "Test", Version: "1.0.0"}
	return NewServer(cfg, &Dependencies{
		Session:  s,
		Jobs:     jobs,
		Telegram: mockTelegram{status: telegram.StatusReady},
		Runs:     runs,
	})
}

func serve(srv *Server, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(session.New(nil), mockJobs{}, nil)

	w := serve(srv, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "READY", resp.Telegram)
}

func TestSessionEndpoint(t *testing.T) {
	s := session.New(nil)
	s.Start()
	_, _, err := s.Add(session.Candidate{Caption: "Show S01E02 1080p", Source: session.SourceLocation{MessageID: 1}})
	require.NoError(t, err)
	_, _, err = s.Add(session.Candidate{Caption: "Show S01E02 720p", Source: session.SourceLocation{MessageID: 2}})
	require.NoError(t, err)
	_, _, err = s.Add(session.Candidate{Caption: "Show S01E01 720p", Source: session.SourceLocation{MessageID: 3}})
	require.NoError(t, err)
	s.ToggleForwardMode()
	s.SetDestination(&session.Destination{ID: 9, Title: "Archive", IsChannel: true})

	job := &delivery.Job{ID: uuid.New(), StartedAt: time.Now()}
	srv := newTestServer(s, mockJobs{job: job}, nil)

	w := serve(srv, "/api/v1/session")
	require.Equal(t, http.StatusOK, w.Code)

	var resp SessionResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

	assert.Equal(t, "COLLECTING", resp.State)
	assert.Equal(t, 3, resp.Count)
	assert.True(t, resp.ForwardMode)
	assert.False(t, resp.TagRemove)
	assert.Equal(t, []EpisodeSummary{
		{Episode: "01", Qualities: []string{"720p"}},
		{Episode: "02", Qualities: []string{"720p", "1080p"}},
	}, resp.Episodes)
	require.NotNil(t, resp.Destination)
	assert.Equal(t, "Archive", resp.Destination.Title)
	require.NotNil(t, resp.Running)
	assert.Equal(t, job.ID, resp.Running.ID)
}

func TestSessionEndpoint_Idle(t *testing.T) {
	srv := newTestServer(session.New(nil), mockJobs{}, nil)

	w := serve(srv, "/api/v1/session")
	require.Equal(t, http.StatusOK, w.Code)

	var resp SessionResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "IDLE", resp.State)
	assert.Empty(t, resp.Episodes)
	assert.Nil(t, resp.Destination)
	assert.Nil(t, resp.Running)
}

func TestRunsEndpoint(t *testing.T) {
	t.Run("lists runs", func(t *testing.T) {
		runs := &mockRuns{runs: []history.Run{{ID: uuid.New(), Destination: "Archive", Delivered: 3}}, total: 42}
		srv := newTestServer(session.New(nil), mockJobs{}, runs)

		w := serve(srv, "/api/v1/runs?limit=5")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 5, runs.gotLimit)

		var resp RunsResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, 1, resp.Count)
		assert.Equal(t, int64(42), resp.Total)
		assert.Equal(t, 3, resp.Runs[0].Delivered)
	})

	t.Run("default limit", func(t *testing.T) {
		runs := &mockRuns{}
		srv := newTestServer(session.New(nil), mockJobs{}, runs)

		w := serve(srv, "/api/v1/runs")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, history.DefaultLimit, runs.gotLimit)
	})

	t.Run("bad limit", func(t *testing.T) {
		srv := newTestServer(session.New(nil), mockJobs{}, &mockRuns{})

		w := serve(srv, "/api/v1/runs?limit=abc")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("repository error", func(t *testing.T) {
		srv := newTestServer(session.New(nil), mockJobs{}, &mockRuns{err: errors.New("database is locked")})

		w := serve(srv, "/api/v1/runs")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("count error", func(t *testing.T) {
		srv := newTestServer(session.New(nil), mockJobs{}, &mockRuns{countErr: errors.New("database is locked")})

		w := serve(srv, "/api/v1/runs")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("history disabled", func(t *testing.T) {
		srv := newTestServer(session.New(nil), mockJobs{}, nil)

		w := serve(srv, "/api/v1/runs")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestScalarHandler(t *testing.T) {
	w := httptest.NewRecorder()
	ScalarHandler("/openapi.json", "Relay <API>", "Status").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/docs", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), `data-url="/openapi.json"`)
	assert.Contains(t, w.Body.String(), "Relay &lt;API&gt;")
}
