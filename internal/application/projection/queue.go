package projection

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrQueueFull el buffer está lleno; el barrido periódico reencolará la venta.
	ErrQueueFull = errors.New("cola de proyección llena")
	// ErrQueueClosed la cola ya no acepta tareas.
	ErrQueueClosed = errors.New("cola de proyección cerrada")
)

// Queue transporte de tareas de proyección (ID de venta).
type Queue interface {
	Enqueue(ctx context.Context, saleID string) error
}

// ChannelQueue cola en proceso sobre un canal con buffer. Enqueue nunca bloquea.
type ChannelQueue struct {
	mu     sync.RWMutex
	ch     chan string
	closed bool
}

var _ Queue = (*ChannelQueue)(nil)

// NewChannelQueue crea la cola con el tamaño de buffer indicado.
func NewChannelQueue(buffer int) *ChannelQueue {
	if buffer <= 0 {
		buffer = 256
	}
	return &ChannelQueue{ch: make(chan string, buffer)}
}

// Enqueue agrega la venta a la cola.
func (q *ChannelQueue) Enqueue(ctx context.Context, saleID string) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case q.ch <- saleID:
		return nil
	default:
		return ErrQueueFull
	}
}

// Tasks canal que consumen los workers.
func (q *ChannelQueue) Tasks() <-chan string { return q.ch }

// Len tareas pendientes.
func (q *ChannelQueue) Len() int { return len(q.ch) }

// Free lugares libres en el buffer.
func (q *ChannelQueue) Free() int { return cap(q.ch) - len(q.ch) }

// Close cierra la cola; los workers terminan al vaciarla.
func (q *ChannelQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
}
