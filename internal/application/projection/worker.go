package projection

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/tienda-pos/internal/domain"
)

// SaleProjector proyecta una venta; lo implementa Projector.
type SaleProjector interface {
	Project(ctx context.Context, saleID string) (Outcome, error)
}

// Metrics observa las proyecciones.
type Metrics interface {
	ProjectionDone(outcome Outcome, elapsed time.Duration)
	ProjectionFailed(reason string)
}

// FailureRecorder guarda los intentos fallidos para que el barrido deje de reencolar
// las ventas que nunca podrán proyectarse.
type FailureRecorder interface {
	RecordProjectionFailure(ctx context.Context, saleID, reason string, at time.Time) error
}

type nopMetrics struct{}

func (nopMetrics) ProjectionDone(Outcome, time.Duration) {}
func (nopMetrics) ProjectionFailed(string)               {}

// Worker consume tareas de proyección con N goroutines. Un fallo se registra y no se reintenta
// en el ciclo; lo recupera el Sweeper.
type Worker struct {
	projector SaleProjector
	workers   int
	metrics   Metrics
	failures  FailureRecorder
	log       zerolog.Logger
	now       func() time.Time
}

// WorkerOption configura el Worker.
type WorkerOption func(*Worker)

// WithFailureRecorder registra en r cada proyección fallida.
func WithFailureRecorder(r FailureRecorder) WorkerOption {
	return func(w *Worker) { w.failures = r }
}

// NewWorker construye el pool. metrics puede ser nil.
func NewWorker(projector SaleProjector, workers int, metrics Metrics, log zerolog.Logger, opts ...WorkerOption) *Worker {
	if workers <= 0 {
		workers = 1
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	w := &Worker{projector: projector, workers: workers, metrics: metrics, log: log, now: time.Now}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run drena tasks hasta que se cierre o se cancele ctx. Bloquea hasta que terminan todas las goroutines.
func (w *Worker) Run(ctx context.Context, tasks <-chan string) {
	var wg sync.WaitGroup
	for i := 0; i < w.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case saleID, ok := <-tasks:
					if !ok {
						return
					}
					_ = w.Handle(ctx, saleID)
				}
			}
		}()
	}
	wg.Wait()
	w.log.Info().Msg("workers de proyección detenidos")
}

// Handle proyecta una venta registrando el resultado.
func (w *Worker) Handle(ctx context.Context, saleID string) error {
	start := time.Now()
	outcome, err := w.projector.Project(ctx, saleID)
	if err != nil {
		reason := "error"
		switch {
		case errors.Is(err, domain.ErrInsufficientStock):
			reason = "insufficient_stock"
		case errors.Is(err, domain.ErrNotFound):
			reason = "not_found"
		}
		w.metrics.ProjectionFailed(reason)
		w.log.Error().Err(err).Str("sale_id", saleID).Str("reason", reason).Msg("falló la proyección de salidas")
		w.recordFailure(ctx, saleID, reason, err)
		return err
	}
	w.metrics.ProjectionDone(outcome, time.Since(start))
	w.log.Debug().Str("sale_id", saleID).Str("outcome", string(outcome)).Msg("proyección de salidas")
	return nil
}

// recordFailure cuenta el intento salvo que la venta no exista o el fallo venga del apagado.
func (w *Worker) recordFailure(ctx context.Context, saleID, reason string, cause error) {
	if w.failures == nil || reason == "not_found" || ctx.Err() != nil {
		return
	}
	if err := w.failures.RecordProjectionFailure(ctx, saleID, reason+": "+cause.Error(), w.now()); err != nil {
		w.log.Error().Err(err).Str("sale_id", saleID).Msg("no se pudo registrar el intento fallido")
	}
}
