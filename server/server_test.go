package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kozko2001/obsidian-wallabag/pkg/db"
	"github.com/kozko2001/obsidian-wallabag/pkg/domain"
	"github.com/kozko2001/obsidian-wallabag/pkg/wallabag"
)

type mockConfig struct{}

func (m *mockConfig) GetServerConfig() (string, time.Duration) {
	return "127.0.0.1:0", 5 * time.Second
}

type mockSyncer struct {
	result *domain.RunResult
	err    error
	calls  int
}

func (m *mockSyncer) Run(_ context.Context) (*domain.RunResult, error) {
	m.calls++
	return m.result, m.err
}

type mockHistory struct {
	runs    []db.Run
	entries []db.SyncedEntry
	err     error
}

func (m *mockHistory) GetRuns(_ context.Context, limit int) ([]db.Run, error) {
	if m.err != nil {
		return nil, m.err
	}
	if limit < len(m.runs) {
		return m.runs[:limit], nil
	}
	return m.runs, nil
}

func (m *mockHistory) GetEntries(_ context.Context, _, _ int) ([]db.SyncedEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.entries, nil
}

func testServer(t *testing.T, syncer *mockSyncer, history *mockHistory) *httptest.Server {
	t.Helper()
	srv := New(&mockConfig{}, syncer, history, "test", false)
	ts := httptest.NewServer(srv.router)
	t.Cleanup(ts.Close)
	return ts
}

func TestServer_StatusHandler(t *testing.T) {
	ts := testServer(t, &mockSyncer{}, &mockHistory{})

	resp, err := http.Get(ts.URL + "/api/v1/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var status map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, "ok", status["status"])
	assert.Equal(t, "test", status["version"])
}

func TestServer_RunsHandler(t *testing.T) {
	t.Run("returns runs", func(t *testing.T) {
		history := &mockHistory{runs: []db.Run{
			{ID: 2, Total: 5, Created: 3, Updated: 1, Failed: 1},
			{ID: 1, Total: 4, Created: 4},
		}}
		ts := testServer(t, &mockSyncer{}, history)

		resp, err := http.Get(ts.URL + "/api/v1/runs")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var runs []db.Run
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&runs))
		require.Len(t, runs, 2)
		assert.Equal(t, int64(2), runs[0].ID)
	})

	t.Run("limit parameter", func(t *testing.T) {
		history := &mockHistory{runs: []db.Run{{ID: 3}, {ID: 2}, {ID: 1}}}
		ts := testServer(t, &mockSyncer{}, history)

		resp, err := http.Get(ts.URL + "/api/v1/runs?limit=1")
		require.NoError(t, err)
		defer resp.Body.Close()

		var runs []db.Run
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&runs))
		assert.Len(t, runs, 1)
	})

	t.Run("history error", func(t *testing.T) {
		ts := testServer(t, &mockSyncer{}, &mockHistory{err: errors.New("db gone")})

		resp, err := http.Get(ts.URL + "/api/v1/runs")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

func TestServer_EntriesHandler(t *testing.T) {
	history := &mockHistory{entries: []db.SyncedEntry{
		{ID: 1, Title: "First", Path: "wallabag/First.md", Status: "created"},
	}}
	ts := testServer(t, &mockSyncer{}, history)

	resp, err := http.Get(ts.URL + "/api/v1/entries")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var entries []db.SyncedEntry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "wallabag/First.md", entries[0].Path)
}

func TestServer_SyncHandler(t *testing.T) {
	t.Run("successful sync", func(t *testing.T) {
		result := &domain.RunResult{Total: 3, Created: 2, Updated: 1}
		syncer := &mockSyncer{result: result}
		ts := testServer(t, syncer, &mockHistory{})

		resp, err := http.Post(ts.URL+"/api/v1/sync", "application/json", http.NoBody)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 1, syncer.calls)

		var body map[string]int
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, 3, body["total"])
		assert.Equal(t, 2, body["created"])
		assert.Equal(t, 1, body["updated"])
		assert.Equal(t, 0, body["failed"])
	})

	t.Run("auth failure maps to 401", func(t *testing.T) {
		syncer := &mockSyncer{err: &wallabag.AuthError{Code: 400, Description: "bad credentials"}}
		ts := testServer(t, syncer, &mockHistory{})

		resp, err := http.Post(ts.URL+"/api/v1/sync", "application/json", http.NoBody)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Contains(t, body["error"], "authentication failed")
	})

	t.Run("fetch failure maps to 502", func(t *testing.T) {
		syncer := &mockSyncer{err: &wallabag.FetchError{Code: 500, Reason: "boom"}}
		ts := testServer(t, syncer, &mockHistory{})

		resp, err := http.Post(ts.URL+"/api/v1/sync", "application/json", http.NoBody)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	})

	t.Run("get not allowed", func(t *testing.T) {
		ts := testServer(t, &mockSyncer{}, &mockHistory{})

		resp, err := http.Get(ts.URL + "/api/v1/sync")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}

func TestServer_Ping(t *testing.T) {
	ts := testServer(t, &mockSyncer{}, &mockHistory{})

	resp, err := http.Get(ts.URL + "/ping")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_RunShutdown(t *testing.T) {
	srv := New(&mockConfig{}, &mockSyncer{}, &mockHistory{}, "test", false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down")
	}
}
