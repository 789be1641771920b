package projection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// UnprojectedLister ventas confirmadas sin salidas.
type UnprojectedLister interface {
	ListUnprojected(ctx context.Context, olderThan time.Time, limit int) ([]string, error)
}

// boundedQueue colas con capacidad finita (ChannelQueue); el lote no pide más de lo que cabe.
type boundedQueue interface {
	Free() int
}

// Sweeper reencola periódicamente las ventas que siguen sin salidas pasado el periodo de gracia
// (caída entre commit y encolado, cola llena o fallos transitorios).
type Sweeper struct {
	sales    UnprojectedLister
	queue    Queue
	interval time.Duration
	grace    time.Duration
	batch    int
	log      zerolog.Logger
	now      func() time.Time
}

// NewSweeper construye el barrido.
func NewSweeper(sales UnprojectedLister, queue Queue, interval, grace time.Duration, log zerolog.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		sales:    sales,
		queue:    queue,
		interval: interval,
		grace:    grace,
		batch:    500,
		log:      log,
		now:      time.Now,
	}
}

// Run barre al iniciar y en cada intervalo hasta que se cancele ctx.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
			s.log.Error().Err(err).Msg("barrido de proyecciones")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Sweep reencola un lote y devuelve cuántas ventas encoló. Con la cola llena deja el resto
// para el próximo ciclo.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	limit := s.batch
	if q, ok := s.queue.(boundedQueue); ok {
		limit = min(limit, q.Free())
	}
	if limit <= 0 {
		s.log.Debug().Msg("cola de proyección llena, barrido pospuesto")
		return 0, nil
	}
	ids, err := s.sales.ListUnprojected(ctx, s.now().Add(-s.grace), limit)
	if err != nil {
		return 0, fmt.Errorf("listar ventas sin salidas: %w", err)
	}
	n := 0
	for _, id := range ids {
		if err := s.queue.Enqueue(ctx, id); err != nil {
			if errors.Is(err, ErrQueueFull) {
				break
			}
			return n, fmt.Errorf("reencolar venta %s: %w", id, err)
		}
		n++
	}
	if n > 0 {
		s.log.Warn().Int("sales", n).Msg("ventas sin salidas reencoladas")
	}
	return n, nil
}
