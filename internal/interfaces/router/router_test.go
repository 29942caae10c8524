package router

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"sunshare-backend/internal/config"
	"sunshare-backend/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*fiber.App, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	app, deps, err := CreateApp(&config.Config{Env: "test", RedisURL: "redis://" + mr.Addr()})
	require.NoError(t, err)
	assert.Nil(t, deps.DB)
	t.Cleanup(func() { deps.Rdb.Close() })
	return app, mr
}

func TestCreateApp_RequiresRedis(t *testing.T) {
	_, _, err := CreateApp(&config.Config{})
	assert.Error(t, err)
}

func TestCreateApp_CalculatorRoutesWithoutDatabase(t *testing.T) {
	app, mr := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/economics?capacity_kw=5", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Trace-Id"))

	resp, err = app.Test(httptest.NewRequest("GET", "/api/v1/refunds/tier?days=10", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	total, err := mr.Get(middleware.KeyReqTotal)
	require.NoError(t, err)
	assert.Equal(t, "2", total)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/v1/admin/projects", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCreateApp_HealthReportsMissingDatabase(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/health/json", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	var body struct {
		Status       string `json:"status"`
		Dependencies map[string]struct {
			Status string `json:"status"`
		} `json:"dependencies"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "issue", body.Status)
	assert.Equal(t, "connected", body.Dependencies["redis"].Status)
	assert.Equal(t, "disconnected", body.Dependencies["database"].Status)
	assert.Equal(t, "disabled", body.Dependencies["event_bus"].Status)
}
