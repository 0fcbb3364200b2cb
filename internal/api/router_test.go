package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/stevehedden/kgcatalog/internal/cache"
	"github.com/stevehedden/kgcatalog/internal/catalog"
	"github.com/stevehedden/kgcatalog/internal/middleware"
	"github.com/stevehedden/kgcatalog/internal/sparql"
)

type stubExecutor struct{}

func (stubExecutor) Select(_ context.Context, _ string) ([]sparql.Row, error) {
	return []sparql.Row{
		{"item": "http://www.wikidata.org/entity/Q1", "itemLabel": "OWL", "licenses": "CC0"},
	}, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc, err := catalog.NewService(stubExecutor{}, cache.NewMemoryStore(), catalog.Config{
		Limit:   100,
		TTL:     time.Hour,
		Weights: catalog.DefaultWeights(),
	})
	require.NoError(t, err)

	r, err := NewRouter(svc, middleware.NewMemoryRateStore())
	require.NoError(t, err)
	return r
}

func TestRouterRequiresService(t *testing.T) {
	_, err := NewRouter(nil, nil)
	require.Error(t, err)
}

func TestRouterHealthRoute(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Equal(t, true, payload["success"])
}

func TestRouterCatalogRoute(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/catalog/resources", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"Q1"`)
}

func TestRouterMetricsRoute(t *testing.T) {
	r := newTestRouter(t)

	// Generate at least one observation before scraping.
	seed := httptest.NewRecorder()
	r.ServeHTTP(seed, httptest.NewRequest(http.MethodGet, "/health", nil))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "kgcatalog_")
}

func TestRouterUnknownAPIRouteReturnsJSON(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Header().Get("Content-Type"), "application/json")
}

func TestRouterServesFrontend(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "<html")

	// Unknown non-API paths fall back to the table page
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/some/client/route", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "<html")
}
