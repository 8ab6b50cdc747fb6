package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workerscope/app/handler"
	"workerscope/app/middleware"
	"workerscope/internal/model"
	"workerscope/internal/service"
	"workerscope/pkg/config"
	"workerscope/pkg/source"
)

type stubVitals struct {
	rows []model.Record
	err  error
}

func (s stubVitals) FetchVitals(ctx context.Context, deployment string) ([]model.Record, error) {
	return s.rows, s.err
}

type stubInventory struct {
	containers []model.Record
	builds     []model.Record
}

func (s stubInventory) FetchContainers(ctx context.Context, target string) ([]model.Record, error) {
	return s.containers, nil
}

func (s stubInventory) FetchBuilds(ctx context.Context, target string) ([]model.Record, error) {
	return s.builds, nil
}

var busyVitals = stubVitals{rows: []model.Record{
	{"instance": "worker/abcdef1234567", "cpu_sys": "1.0%", "cpu_user": "50.0%", "cpu_wait": "2.0%"},
	{"instance": "worker/99999999aaaa", "cpu_sys": "1.0%", "cpu_user": "5.0%", "cpu_wait": "0.0%"},
	{"instance": "web/11111111", "cpu_sys": "80.0%", "cpu_user": "0.0%", "cpu_wait": "0.0%"},
}}

var busyInventory = stubInventory{
	containers: []model.Record{{
		"worker_name": "abcdef12-x", "type": "task", "state": "created",
		"build_id": 7, "build_name": "3", "job_name": "unit", "step_name": "test",
	}},
	builds: []model.Record{{"id": 7, "status": "started", "team_name": "main", "pipeline_name": "app", "job_name": "unit"}},
}

func newEngine(t *testing.T, vitals stubVitals, apiKey, deployment, target string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := service.NewReportService(vitals, busyInventory, config.DefaultConfig().Report)
	engine := gin.New()
	NewRouter(handler.NewReportHandler(svc, deployment, target), apiKey).Setup(engine)
	return engine
}

func get(engine *gin.Engine, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	w := get(newEngine(t, busyVitals, "secret", "", ""), "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestReport_JSON(t *testing.T) {
	w := get(newEngine(t, busyVitals, "", "", ""), "/v1/report?deployment=concourse&target=ci", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

	var report model.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, "concourse", report.Deployment)
	require.Len(t, report.TopWorkers, 2)
	assert.Equal(t, "worker/abcdef1234567", report.TopWorkers[0].Instance)
	require.Len(t, report.Sections, 2)
	assert.Equal(t, model.OutcomeAttributed, report.Sections[0].Outcome)
	assert.Equal(t, model.OutcomeNoContainers, report.Sections[1].Outcome)
}

func TestReport_TextWithServerDefaults(t *testing.T) {
	w := get(newEngine(t, busyVitals, "", "concourse", "ci"), "/v1/report?format=text", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "Top 10 Busiest Workers:"))
	assert.Contains(t, body, "worker/99999999aaaa No containers found for worker")
}

func TestReport_BadRequests(t *testing.T) {
	engine := newEngine(t, busyVitals, "", "", "")

	w := get(engine, "/v1/report?deployment=concourse", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = get(engine, "/v1/report?deployment=concourse&target=ci&format=xml", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = get(engine, "/v1/workers/top", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReport_VitalsFailureIsStillAReport(t *testing.T) {
	vitals := stubVitals{err: source.ErrNoData}
	w := get(newEngine(t, vitals, "", "concourse", "ci"), "/v1/report", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var report model.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	require.NotNil(t, report.Termination)
	assert.Equal(t, model.TerminationNoWorkerData, report.Termination.Reason)
}

func TestTopWorkers(t *testing.T) {
	w := get(newEngine(t, busyVitals, "", "concourse", ""), "/v1/workers/top", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Deployment string              `json:"deployment"`
		Workers    []model.WorkerVital `json:"workers"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "concourse", body.Deployment)
	require.Len(t, body.Workers, 2)
	assert.InDelta(t, 53.0, body.Workers[0].CPUTotal, 1e-9)

	vitals := stubVitals{err: errors.New("exit status 1")}
	w = get(newEngine(t, vitals, "", "concourse", ""), "/v1/workers/top", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAuth(t *testing.T) {
	engine := newEngine(t, busyVitals, "secret", "concourse", "ci")

	w := get(engine, "/v1/workers/top", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(engine, "/v1/workers/top", http.Header{"Authorization": {"secret"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(engine, "/v1/workers/top", http.Header{"Authorization": {"Bearer wrong"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(engine, "/v1/workers/top", http.Header{"Authorization": {"Bearer secret"}})
	assert.Equal(t, http.StatusOK, w.Code)

	w = get(engine, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
