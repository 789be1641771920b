package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-pos/internal/application/projection"
	"github.com/jhoicas/tienda-pos/internal/application/sales"
	"github.com/jhoicas/tienda-pos/internal/application/stock"
	"github.com/jhoicas/tienda-pos/internal/domain/entity"
)

var (
	_ stock.Metrics      = (*Collector)(nil)
	_ sales.Metrics      = (*Collector)(nil)
	_ projection.Metrics = (*Collector)(nil)
)

const namespace = "tienda_pos"

// Collector métricas Prometheus del servicio sobre un registro propio.
type Collector struct {
	registry *prometheus.Registry

	mutations        *prometheus.CounterVec
	mutationUnits    *prometheus.CounterVec
	mutationRejected *prometheus.CounterVec
	sales            *prometheus.CounterVec
	salesAmount      *prometheus.CounterVec
	salesRejected    *prometheus.CounterVec
	projections      *prometheus.CounterVec
	projectionFailed *prometheus.CounterVec
	projectionTime   prometheus.Histogram
	requests         *prometheus.CounterVec
	requestLatency   *prometheus.HistogramVec
}

// New registra los colectores. Cada instancia es independiente (tests en paralelo).
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "stock_mutations_total",
			Help: "Mutaciones de stock confirmadas por tipo.",
		}, []string{"kind"}),
		mutationUnits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "stock_mutation_units_total",
			Help: "Unidades movidas por tipo de mutación.",
		}, []string{"kind"}),
		mutationRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "stock_mutations_rejected_total",
			Help: "Mutaciones de stock rechazadas por motivo.",
		}, []string{"kind", "reason"}),
		sales: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "sales_total",
			Help: "Ventas confirmadas por forma de pago.",
		}, []string{"payment_method"}),
		salesAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "sales_amount_total",
			Help: "Importe final acumulado de ventas con importe no negativo.",
		}, []string{"payment_method"}),
		salesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "sales_rejected_total",
			Help: "Ventas rechazadas por motivo.",
		}, []string{"reason"}),
		projections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "outflow_projections_total",
			Help: "Proyecciones de salidas por resultado.",
		}, []string{"outcome"}),
		projectionFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "outflow_projections_failed_total",
			Help: "Proyecciones fallidas por motivo.",
		}, []string{"reason"}),
		projectionTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "outflow_projection_duration_seconds",
			Help:    "Duración de una proyección exitosa.",
			Buckets: prometheus.DefBuckets,
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total",
			Help: "Peticiones HTTP por método, ruta y estado.",
		}, []string{"method", "route", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "Latencia HTTP por método y ruta.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.mutations, c.mutationUnits, c.mutationRejected,
		c.sales, c.salesAmount, c.salesRejected,
		c.projections, c.projectionFailed, c.projectionTime,
		c.requests, c.requestLatency,
	)
	return c
}

// Registry expone el registro (tests y handler).
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// MutationApplied implementa stock.Metrics.
func (c *Collector) MutationApplied(kind entity.LedgerKind, quantity int) {
	c.mutations.WithLabelValues(string(kind)).Inc()
	c.mutationUnits.WithLabelValues(string(kind)).Add(float64(quantity))
}

// MutationRejected implementa stock.Metrics.
func (c *Collector) MutationRejected(kind entity.LedgerKind, reason string) {
	c.mutationRejected.WithLabelValues(string(kind), reason).Inc()
}

// SaleCommitted implementa sales.Metrics. Los importes negativos no suman (un counter no decrece).
func (c *Collector) SaleCommitted(method entity.PaymentMethod, amount decimal.Decimal) {
	c.sales.WithLabelValues(string(method)).Inc()
	if amount.IsPositive() {
		c.salesAmount.WithLabelValues(string(method)).Add(amount.InexactFloat64())
	}
}

// SaleRejected implementa sales.Metrics.
func (c *Collector) SaleRejected(reason string) {
	c.salesRejected.WithLabelValues(reason).Inc()
}

// ProjectionDone implementa projection.Metrics.
func (c *Collector) ProjectionDone(outcome projection.Outcome, elapsed time.Duration) {
	c.projections.WithLabelValues(string(outcome)).Inc()
	c.projectionTime.Observe(elapsed.Seconds())
}

// ProjectionFailed implementa projection.Metrics.
func (c *Collector) ProjectionFailed(reason string) {
	c.projectionFailed.WithLabelValues(reason).Inc()
}

// Middleware mide cada petición con la ruta registrada (no la URL) para acotar la cardinalidad.
func (c *Collector) Middleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		start := time.Now()
		err := ctx.Next()
		status := ctx.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := ctx.Route().Path
		c.requests.WithLabelValues(ctx.Method(), route, strconv.Itoa(status)).Inc()
		c.requestLatency.WithLabelValues(ctx.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler exposición en formato Prometheus (montar con el adaptador de fiber).
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
