package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/api"
	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/config"
	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/metrics"
	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/service"
	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/testutil"
)

func TestRouter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	registry := prometheus.NewRegistry()
	m := metrics.New("portfolio_analytics", registry)
	m.MissingMarketData.WithLabelValues("price").Inc()
	cfg := &config.Config{CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}}}
	router := api.NewRouter(service.NewSystemService(db, nil), registry, cfg, zerolog.Nop())

	t.Run("metrics", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `portfolio_analytics_valuation_missing_market_data_total{kind="price"} 1`)
	})

	t.Run("health", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/system/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	})

	t.Run("cors allows configured origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/system/health", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unknown route", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/portfolio", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
