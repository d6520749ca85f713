package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Each test uses a fresh registry to avoid duplicate-registration panics.

func newPromApp(t *testing.T) (*fiber.App, *PrometheusMiddleware) {
	t.Helper()
	reg := prometheus.NewRegistry()
	pm, err := NewPrometheusMiddleware(reg)
	require.NoError(t, err)

	app := fiber.New()
	app.Use(pm.Handler())
	return app, pm
}

func TestPrometheusMiddleware_CountsRequests(t *testing.T) {
	app, pm := newPromApp(t)

	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/error", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusBadRequest, "bad request")
	})

	resp, _ := app.Test(httptest.NewRequest("GET", "/test", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	count := testutil.ToFloat64(pm.requestCount.WithLabelValues("GET", "/test", "200"))
	assert.Equal(t, 1.0, count)

	app.Test(httptest.NewRequest("GET", "/error", nil))
	countErr := testutil.ToFloat64(pm.requestCount.WithLabelValues("GET", "/error", "400"))
	assert.Equal(t, 1.0, countErr)
}

func TestPrometheusMiddleware_ExcludesMetricsEndpoint(t *testing.T) {
	app, pm := newPromApp(t)

	app.Get("/metrics", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	app.Test(httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 0, testutil.CollectAndCount(pm.requestCount))
}

func TestPrometheusMiddleware_UsesRoutePattern(t *testing.T) {
	app, pm := newPromApp(t)

	app.Get("/users/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	app.Test(httptest.NewRequest("GET", "/users/123", nil))

	// The label must be the pattern, not the concrete path, or cardinality explodes.
	count := testutil.ToFloat64(pm.requestCount.WithLabelValues("GET", "/users/:id", "200"))
	assert.Equal(t, 1.0, count)
}

func TestPrometheusMiddleware_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()

	_, err := NewPrometheusMiddleware(reg)
	require.NoError(t, err)

	_, err = NewPrometheusMiddleware(reg)
	assert.Error(t, err)
}
