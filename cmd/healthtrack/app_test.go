package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthtrack/internal/infra/config"
	ginserver "healthtrack/internal/infra/http/gin"
	"healthtrack/internal/infra/obs"
)

func testConfig(t *testing.T, driver string) config.Config {
	return config.Config{
		Env:         "test",
		StoreDriver: driver,
		SQLitePath:  filepath.Join(t.TempDir(), "app.db"),
		SessionTTL:  30 * time.Minute,
		BcryptCost:  4,
	}
}

func TestBuildApplicationServesReports(t *testing.T) {
	for _, driver := range []string{config.StoreMemory, config.StoreSQLite} {
		t.Run(driver, func(t *testing.T) {
			ctx := context.Background()
			logger := obs.NewLogger("test", io.Discard)
			app, err := buildApplication(ctx, testConfig(t, driver), logger)
			require.NoError(t, err)
			t.Cleanup(func() { _ = app.Close(ctx) })
			assert.Nil(t, app.worker)

			router := ginserver.NewRouter(obs.Middleware{}, obs.HealthHandlers{Checks: app.checks}, app.handlers())

			body := `{"hb":"14","sugar":"95","bp_sys":"120","bp_dia":"80","chol":"180","height":"170","weight":"65"}`
			req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

			w = httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reports/export.csv", nil))
			require.Equal(t, http.StatusOK, w.Code)
			lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
			assert.Len(t, lines, 2)

			w = httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			assert.Equal(t, http.StatusOK, w.Code)

			w = httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/reports/export/archive", nil))
			assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		})
	}
}

func TestOpenStoresRejectsUnknownDriver(t *testing.T) {
	_, err := openStores(context.Background(), config.Config{StoreDriver: "redis"}, obs.NewLogger("test", io.Discard))
	assert.Error(t, err)
}
