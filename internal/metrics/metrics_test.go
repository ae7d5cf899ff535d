package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRPC(t *testing.T) {
	m := New()
	m.ObserveRPC("addTodo", "ok", time.Millisecond)
	m.ObserveRPC("addTodo", "ok", time.Millisecond)
	m.ObserveRPC("addTodo", "not_found", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.rpcCalls.WithLabelValues("addTodo", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rpcCalls.WithLabelValues("addTodo", "not_found")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveRPC("getTodos", "ok", time.Second)
	m.IncMutation("add_item")
	m.IncPersistFailure()
	m.IncRateLimited()
	assert.Nil(t, m.Registry())
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.IncPersistFailure()
	m.IncMutation("toggle_item")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "vtodo_persist_failures_total 1"))
	assert.True(t, strings.Contains(body, `vtodo_store_mutations_total{op="toggle_item"} 1`))
}
