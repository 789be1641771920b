package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-pos/internal/application/projection"
	"github.com/jhoicas/tienda-pos/internal/domain/entity"
)

func TestCollector_Contadores(t *testing.T) {
	c := New()

	c.MutationApplied(entity.LedgerOutflow, 3)
	c.MutationApplied(entity.LedgerOutflow, 2)
	c.MutationRejected(entity.LedgerOutflow, "insufficient_stock")
	c.SaleCommitted(entity.PaymentPix, decimal.NewFromInt(100))
	c.SaleCommitted(entity.PaymentPix, decimal.NewFromInt(-5))
	c.ProjectionDone(projection.OutcomeAlreadyProjected, 10*time.Millisecond)
	c.ProjectionFailed("not_found")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.mutations.WithLabelValues("outflow")))
	assert.Equal(t, 5.0, testutil.ToFloat64(c.mutationUnits.WithLabelValues("outflow")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.mutationRejected.WithLabelValues("outflow", "insufficient_stock")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.sales.WithLabelValues("pix")))
	assert.Equal(t, 100.0, testutil.ToFloat64(c.salesAmount.WithLabelValues("pix")), "el importe negativo no suma")
	assert.Equal(t, 1.0, testutil.ToFloat64(c.projections.WithLabelValues("already_projected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.projectionFailed.WithLabelValues("not_found")))
}

func TestCollector_MiddlewareYExposicion(t *testing.T) {
	c := New()
	app := fiber.New()
	app.Use(c.Middleware())
	app.Get("/api/products/:id", func(ctx *fiber.Ctx) error {
		return ctx.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/products/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.requests.WithLabelValues("GET", "/api/products/:id", "204")))

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "tienda_pos_http_requests_total"))
}
