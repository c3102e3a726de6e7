package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightflow/leadscout/internal/model"
	"github.com/insightflow/leadscout/internal/store"
)

func newTestMux(t *testing.T, st store.Store) *http.ServeMux {
	t.Helper()
	return buildMux(context.Background(), nil, st)
}

func TestServeMux_Health(t *testing.T) {
	mux := newTestMux(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestServeMux_CreateRun_Accepted(t *testing.T) {
	mux := newTestMux(t, nil)

	payload := `{"product":"industrial dehumidifiers","mode":"full","depth":"standard"}`
	req := httptest.NewRequest(http.MethodPost, "/api/runs", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "accepted", body["status"])
	assert.Equal(t, "industrial dehumidifiers", body["product"])
	assert.Equal(t, "full", body["mode"])
	assert.Equal(t, "standard", body["depth"])
}

func TestServeMux_CreateRun_Defaults(t *testing.T) {
	mux := newTestMux(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/runs", strings.NewReader(`{"product":"CNC lathes"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "full", body["mode"])
	assert.Equal(t, "standard", body["depth"])
}

func TestServeMux_CreateRun_MissingProduct(t *testing.T) {
	mux := newTestMux(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/runs", strings.NewReader(`{"mode":"broad"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "product is required")
}

func TestServeMux_CreateRun_InvalidMode(t *testing.T) {
	mux := newTestMux(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/runs", strings.NewReader(`{"product":"pumps","mode":"deep"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "mode must be broad or full")
}

func TestServeMux_CreateRun_InvalidBody(t *testing.T) {
	mux := newTestMux(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/runs", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServeMux_ListRuns_NoStore(t *testing.T) {
	mux := newTestMux(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServeMux_GetRun_NoStore(t *testing.T) {
	mux := newTestMux(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/runs/abc123", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServeMux_RunLifecycleWithStore(t *testing.T) {
	st := newCmdTestStore(t)
	mux := newTestMux(t, st)

	run, err := st.CreateRun(context.Background(), "portable air compressors", model.ModeBroad, "quick")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/runs/"+run.ID, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got model.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "portable air compressors", got.ProductInput)

	req = httptest.NewRequest(http.MethodGet, "/api/runs?mode=broad&limit=10", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Runs []model.Run `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Runs, 1)
	assert.Equal(t, run.ID, list.Runs[0].ID)
}

func TestServeMux_GetRun_NotFound(t *testing.T) {
	st := newCmdTestStore(t)
	mux := newTestMux(t, st)

	req := httptest.NewRequest(http.MethodGet, "/api/runs/missing", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// gatedRunner blocks inside Run until released, so tests can hold a
// run in flight.
type gatedRunner struct {
	started   chan struct{}
	release   chan struct{}
	startOnce sync.Once
}

func newGatedRunner() *gatedRunner {
	return &gatedRunner{started: make(chan struct{}), release: make(chan struct{})}
}

func (r *gatedRunner) Run(context.Context, string, model.RunMode, string) (*model.SalesLeadReport, error) {
	r.startOnce.Do(func() { close(r.started) })
	<-r.release
	return &model.SalesLeadReport{}, nil
}

func TestServeMux_CreateRun_RejectsConcurrentRun(t *testing.T) {
	runner := newGatedRunner()
	mux := buildMux(context.Background(), runner, nil)

	post := func() *httptest.ResponseRecorder {
		payload := `{"product":"industrial dehumidifiers"}`
		req := httptest.NewRequest(http.MethodPost, "/api/runs", strings.NewReader(payload))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		return rec
	}

	first := post()
	assert.Equal(t, http.StatusAccepted, first.Code)
	<-runner.started

	second := post()
	assert.Equal(t, http.StatusConflict, second.Code)
	assert.Contains(t, second.Body.String(), "already in progress")

	close(runner.release)
	require.Eventually(t, func() bool {
		return post().Code == http.StatusAccepted
	}, time.Second, 10*time.Millisecond)
}
