package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appkcf "github.com/turtacn/kcfgraph/internal/application/kcf"
	"github.com/turtacn/kcfgraph/internal/config"
	"github.com/turtacn/kcfgraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/kcfgraph/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/kcfgraph/internal/interfaces/http/handlers"
	"github.com/turtacn/kcfgraph/internal/interfaces/http/middleware"
)

const ethanolKCF = "ENTRY       C00469                      Compound\n" +
	"ATOM        3\n" +
	"            1   C1a C    22.6700  -16.1800\n" +
	"            2   C1b C    23.8830  -15.4800\n" +
	"            3   O1a O    25.0950  -16.1800\n" +
	"BOND        2\n" +
	"            1     1   2 1\n" +
	"            2     2   3 1\n" +
	"///\n"

func newTestRouter(t *testing.T, checkers ...handlers.HealthChecker) (http.Handler, prometheus.MetricsCollector) {
	t.Helper()
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "router"}, nil)
	require.NoError(t, err)
	metrics := prometheus.NewAppMetrics(collector)

	svc := appkcf.NewService(config.ParserConfig{}, config.BatchConfig{Concurrency: 2}, nil, appkcf.WithMetrics(metrics))
	return NewRouter(RouterConfig{
		KCFHandler:       handlers.NewKCFHandler(svc, 1<<16, nil),
		HealthHandler:    handlers.NewHealthHandler("test", checkers...),
		Logger:           logging.NewNopLogger(),
		Logging:          middleware.DefaultLoggingConfig(),
		Metrics:          metrics,
		MetricsCollector: collector,
	}), collector
}

func TestNewRouter_HealthEndpoints(t *testing.T) {
	router, _ := newTestRouter(t, handlers.CheckerFunc("redis", func(context.Context) error { return nil }))

	for _, path := range []string{"/healthz", "/readyz"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestNewRouter_ParseAndMetrics(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/kcf/parse?name=ethanol", strings.NewReader(ethanolKCF)))
	require.Equal(t, http.StatusOK, w.Code)

	var res appkcf.ParseResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "C00469", res.Graph.Entry)
	assert.Equal(t, 3, res.Graph.NumAtoms)
	assert.Equal(t, 2, res.Graph.NumBonds)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `router_http_requests_total{method="POST",path="/api/v1/kcf/parse",status="200"} 1`)
	assert.Contains(t, body, `router_records_parsed_total{source="http",status="ok"} 1`)
}

func TestNewRouter_ObjectWithoutStore(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/kcf/objects/compounds/C00469.kcf", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestNewRouter_UnknownRoute(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/molecules", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/kcf/parse", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestNewRouter_NilHandlers_NoPanic(t *testing.T) {
	router := NewRouter(RouterConfig{})
	w := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

//Personal.AI order the ending
