package admin

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/martos-project/martos/executor/cooperative"
	"github.com/martos-project/martos/syncmgr"
	"github.com/martos-project/martos/syncmgr/transport/mem"
)

func TestSyncStatsNotFoundWithoutManager(t *testing.T) {
	s := New(nil, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/sync/stats", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSyncStatsOK(t *testing.T) {
	bus := mem.NewBus()
	cfg := syncmgr.DefaultConfig()
	cfg.NodeID = 1
	mgr := syncmgr.New(cfg, bus.NewNode(), nil)

	s := New(mgr, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/sync/stats", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "peer_count")
}

func TestSchedulerTasksOK(t *testing.T) {
	exec := cooperative.New()
	exec.AddTask(&cooperative.FuncTask{StopFn: func() bool { return true }})

	s := New(nil, exec, nil)
	req := httptest.NewRequest(http.MethodGet, "/scheduler/tasks", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"task_count":1`)
}

func TestMetricsEndpointServesPrometheusFormat(t *testing.T) {
	s := New(nil, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
