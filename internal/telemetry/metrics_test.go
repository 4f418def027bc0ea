package telemetry

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func TestInitIsIdempotent(t *testing.T) {
	Init()
	Init()

	// Observations after double Init must not panic.
	ObserveScrape("success", true, time.Second)
	ObserveScrape("login_wall", false, time.Second)
	ObserveLoginWall()
	ObserveHeadlessPromotion()
	ObserveCacheOp("get", "hit")
	ObserveSummary("success")
	ObserveHTTPRequest(http.MethodGet, "/api/v1/pages/{page_id}", http.StatusOK, 10*time.Millisecond)
}

func TestHandlerServesMetrics(t *testing.T) {
	Init()
	ObserveScrape("success", false, time.Second)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "insights_scrapes_total")
}

func TestMiddlewareRecordsRoute(t *testing.T) {
	Init()

	router := chi.NewRouter()
	router.Use(Middleware)
	router.Get("/api/v1/pages/{page_id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/pages/acme", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)
}
