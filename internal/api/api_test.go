package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundview-dev/fundview/internal/config"
	"github.com/fundview-dev/fundview/internal/feed"
	"github.com/fundview-dev/fundview/internal/loadlog"
)

const fixture = "../../testdata/submissions.csv"

func newTestServer(t *testing.T, source string, load bool) (*httptest.Server, *feed.Loader, string) {
	t.Helper()
	cfg := config.Default()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	loader := feed.NewLoader(source, feed.Options{Logger: logger})
	if load {
		_, err := loader.Load(context.Background())
		require.NoError(t, err)
	}
	history := filepath.Join(t.TempDir(), "logs", "load-history.csv")
	srv := httptest.NewServer(New(cfg, loader, Options{Logger: logger, HistoryPath: history}).Routes())
	t.Cleanup(srv.Close)
	return srv, loader, history
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	srv, _, _ := newTestServer(t, fixture, false)

	var body map[string]any
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/health", &body))
	assert.Equal(t, "ok", body["status"])
	assert.Nil(t, body["snapshot"])
}

func TestRows_NotLoaded(t *testing.T) {
	srv, _, _ := newTestServer(t, fixture, false)

	for _, path := range []string{"/api/rows", "/api/summary"} {
		var body errResponse
		assert.Equal(t, http.StatusServiceUnavailable, getJSON(t, srv.URL+path, &body), path)
		assert.Equal(t, http.StatusServiceUnavailable, body.Status)
		assert.Equal(t, "feed not loaded yet", body.Message)
	}
}

func TestRows_DefaultFund(t *testing.T) {
	srv, _, _ := newTestServer(t, fixture, true)

	var body rowsResponse
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/rows", &body))
	require.Len(t, body.Rows, 3)
	assert.Equal(t, []string{`fund == "Long-Term Future Fund"`}, body.Filters)
	assert.Equal(t, "Raj", body.Rows[0].FirstName)
	assert.Equal(t, "12000", body.Rows[0].PayoutAmount.String())
	assert.Equal(t, "Cy", body.Rows[0].Extra["Reviewer"])
	assert.Nil(t, body.Rows[2].SubmissionDate)
}

func TestRows_Filters(t *testing.T) {
	srv, _, _ := newTestServer(t, fixture, true)

	var body rowsResponse
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/rows?fund=future&rating_above=0&q=ai+SAFETY", &body))
	require.Len(t, body.Rows, 1)
	assert.Equal(t, 2, *body.Rows[0].ID)

	var all rowsResponse
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/rows?fund=&q=welfare", &all))
	assert.Equal(t, []string{`quick ["welfare"]`}, all.Filters)
	require.Len(t, all.Rows, 2)
	assert.Equal(t, "Ann", all.Rows[0].FirstName)
	assert.Equal(t, "Sam", all.Rows[1].FirstName)
	assert.Nil(t, all.Rows[1].PayoutAmount)
}

func TestRows_BadRating(t *testing.T) {
	srv, _, _ := newTestServer(t, fixture, true)

	var body errResponse
	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/api/rows?rating_above=high", &body))
	assert.Contains(t, body.Message, "rating_above")
}

func TestSummary(t *testing.T) {
	srv, _, _ := newTestServer(t, fixture, true)

	var body summaryResponse
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/summary?fund=", &body))
	assert.Equal(t, "fund", body.GroupBy)
	require.Len(t, body.Groups, 4)

	animal := body.Groups[0]
	require.NotNil(t, animal.Key)
	assert.Equal(t, "Animal Welfare Fund", *animal.Key)
	assert.Equal(t, 2, animal.Rows)
	assert.Equal(t, "$2,500", animal.Values["payoutAmount"].Display)
	assert.Equal(t, "2", animal.Values["fund"].Display)
	assert.Equal(t, "2", animal.Values["rating"].Display)

	future := body.Groups[1]
	assert.Equal(t, "Long-Term Future Fund", *future.Key)
	assert.Equal(t, "$20,500", future.Values["payoutAmount"].Display)
	assert.Equal(t, "4.5", future.Values["rating"].Display)

	infra := body.Groups[2]
	assert.Nil(t, infra.Values["payoutAmount"].Value)
	assert.Equal(t, "", infra.Values["payoutAmount"].Display)

	assert.Nil(t, body.Totals.Key)
	assert.Equal(t, 7, body.Totals.Rows)
	assert.Equal(t, "$24,000", body.Totals.Values["payoutAmount"].Display)
	assert.Equal(t, "7", body.Totals.Values["fund"].Display)
}

func TestSummary_GroupBy(t *testing.T) {
	srv, _, _ := newTestServer(t, fixture, true)

	var body summaryResponse
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/summary?fund=&group_by=Reviewer", &body))
	require.Len(t, body.Groups, 4)
	assert.Equal(t, "Bo", *body.Groups[0].Key)
	assert.Equal(t, 2, body.Groups[0].Rows)
	require.NotNil(t, body.Groups[3].Key)
	assert.Equal(t, "", *body.Groups[3].Key)

	var errBody errResponse
	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/api/summary?group_by=nope", &errBody))
	assert.Contains(t, errBody.Message, "nope")
}

func TestFunds(t *testing.T) {
	srv, _, _ := newTestServer(t, fixture, true)

	var body []fundView
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/funds", &body))
	require.Len(t, body, 4)
	assert.Equal(t, "future", body[0].Key)
	require.NotNil(t, body[0].Rows)
	assert.Equal(t, 3, *body[0].Rows)
	assert.Equal(t, 2, *body[2].Rows)
}

func TestReload(t *testing.T) {
	srv, loader, history := newTestServer(t, fixture, false)

	resp, err := http.Post(srv.URL+"/api/reload", "", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body reloadResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Published)
	require.NotNil(t, body.Snapshot)
	assert.Equal(t, 7, body.Snapshot.Rows)
	assert.Equal(t, loader.Current().ID, body.Snapshot.LoadID)

	entries, err := loadlog.Read(history)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, loadlog.StatusOK, entries[0].Status)
	assert.Equal(t, 7, entries[0].Rows)
}

func TestReload_FailureKeepsSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.csv")
	data, err := os.ReadFile(fixture)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	srv, loader, history := newTestServer(t, path, true)
	before := loader.Current()
	require.NoError(t, os.Remove(path))

	resp, err := http.Post(srv.URL+"/api/reload", "", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Same(t, before, loader.Current())

	entries, err := loadlog.Read(history)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, loadlog.StatusFailed, entries[0].Status)
	assert.NotEmpty(t, entries[0].Error)
}
