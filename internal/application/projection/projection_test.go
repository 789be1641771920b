package projection_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-pos/internal/application/projection"
	"github.com/jhoicas/tienda-pos/internal/application/stock"
	"github.com/jhoicas/tienda-pos/internal/domain"
	"github.com/jhoicas/tienda-pos/internal/domain/entity"
	"github.com/jhoicas/tienda-pos/internal/domain/repository"
	"github.com/jhoicas/tienda-pos/internal/infrastructure/memory"
)

type env struct {
	store     *memory.Store
	engine    *stock.Engine
	projector *projection.Projector
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.New()
	store.AddSupplier(entity.Supplier{ID: "sup-1", Name: "Distribuidora Central"})
	store.AddCustomer(entity.Customer{ID: "c1", Name: "Bruno Lima", IsActive: true})
	engine := stock.NewEngine(store, zerolog.Nop())
	return &env{store: store, engine: engine, projector: projection.NewProjector(engine, zerolog.Nop())}
}

func (e *env) product(t *testing.T, id, title string, qty int) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, e.store.Products().Create(ctx, &entity.Product{
		ID: id, Title: title, CostPrice: decimal.NewFromInt(10), SellingPrice: decimal.NewFromInt(20), IsActive: true,
	}))
	_, err := e.engine.Receive(ctx, id, qty, "", "stock inicial")
	require.NoError(t, err)
}

// sale registra una venta sin salidas (como queda en modo diferido).
func (e *env) sale(t *testing.T, id string, customerID *string, createdAt time.Time, lines map[string]int) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, e.store.Sales().Create(ctx, &entity.Sale{
		ID: id, SellerID: "u1", CustomerID: customerID, PaymentMethod: entity.PaymentCash, Installments: 1,
		CreatedAt: createdAt, UpdatedAt: createdAt,
	}))
	for productID, qty := range lines {
		require.NoError(t, e.store.Sales().CreateItem(ctx, entity.NewSaleItem(id+"-"+productID, id, productID, qty, decimal.NewFromInt(20))))
	}
}

func (e *env) quantity(t *testing.T, id string) int {
	t.Helper()
	p, err := e.store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.Quantity
}

func (e *env) outflows(t *testing.T, saleID string) []*entity.Outflow {
	t.Helper()
	out, err := e.store.Outflows().List(context.Background(), repository.OutflowFilter{SaleID: saleID})
	require.NoError(t, err)
	return out
}

func TestProject_Idempotente(t *testing.T) {
	e := newEnv(t)
	e.product(t, "p1", "Camiseta", 10)
	e.product(t, "p2", "Jean", 5)
	customer := "c1"
	e.sale(t, "v1", &customer, time.Now(), map[string]int{"p1": 3, "p2": 2})
	ctx := context.Background()

	outcome, err := e.projector.Project(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, projection.OutcomeProjected, outcome)

	outcome, err = e.projector.Project(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, projection.OutcomeAlreadyProjected, outcome)

	assert.Equal(t, 7, e.quantity(t, "p1"))
	assert.Equal(t, 3, e.quantity(t, "p2"))
	outs := e.outflows(t, "v1")
	require.Len(t, outs, 2)
	for _, o := range outs {
		assert.Contains(t, o.Description, "Venta #v1 - ")
		assert.Contains(t, o.Description, " - Cliente: Bruno Lima")
	}
}

func TestProject_ConcurrenteUnaSalidaPorItem(t *testing.T) {
	e := newEnv(t)
	e.product(t, "p1", "Camiseta", 10)
	e.product(t, "p2", "Jean", 5)
	e.product(t, "p3", "Gorra", 5)
	e.sale(t, "v1", nil, time.Now(), map[string]int{"p1": 1, "p2": 1, "p3": 1})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = e.projector.Project(context.Background(), "v1")
		}()
	}
	wg.Wait()

	assert.Len(t, e.outflows(t, "v1"), 3)
	assert.Equal(t, 9, e.quantity(t, "p1"))
}

func TestProject_VentaInexistente(t *testing.T) {
	e := newEnv(t)
	_, err := e.projector.Project(context.Background(), "nada")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProject_SinStockNoEscribeNinguna(t *testing.T) {
	e := newEnv(t)
	e.product(t, "p1", "Camiseta", 10)
	e.product(t, "p2", "Jean", 1)
	e.sale(t, "v1", nil, time.Now(), map[string]int{"p1": 2, "p2": 2})

	_, err := e.projector.Project(context.Background(), "v1")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Empty(t, e.outflows(t, "v1"))
	assert.Equal(t, 10, e.quantity(t, "p1"))
}

func TestChannelQueue_LlenaYCerrada(t *testing.T) {
	q := projection.NewChannelQueue(1)
	ctx := context.Background()
	require.NoError(t, q.Enqueue(ctx, "v1"))
	assert.ErrorIs(t, q.Enqueue(ctx, "v2"), projection.ErrQueueFull)
	assert.Equal(t, 1, q.Len())

	q.Close()
	q.Close()
	assert.ErrorIs(t, q.Enqueue(ctx, "v3"), projection.ErrQueueClosed)
	assert.Equal(t, "v1", <-q.Tasks())
}

type metricsSpy struct {
	mu     sync.Mutex
	done   map[projection.Outcome]int
	failed map[string]int
}

func (m *metricsSpy) ProjectionDone(o projection.Outcome, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.done[o]++
}

func (m *metricsSpy) ProjectionFailed(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed[reason]++
}

func TestWorker_DrenaLaCola(t *testing.T) {
	e := newEnv(t)
	e.product(t, "p1", "Camiseta", 10)
	e.sale(t, "v1", nil, time.Now(), map[string]int{"p1": 2})
	e.sale(t, "v2", nil, time.Now(), map[string]int{"p1": 1})

	q := projection.NewChannelQueue(10)
	ctx := context.Background()
	for _, id := range []string{"v1", "v2", "v1", "fantasma"} {
		require.NoError(t, q.Enqueue(ctx, id))
	}
	q.Close()

	spy := &metricsSpy{done: map[projection.Outcome]int{}, failed: map[string]int{}}
	projection.NewWorker(e.projector, 3, spy, zerolog.Nop()).Run(ctx, q.Tasks())

	assert.Equal(t, 7, e.quantity(t, "p1"))
	assert.Equal(t, 2, spy.done[projection.OutcomeProjected])
	assert.Equal(t, 1, spy.done[projection.OutcomeAlreadyProjected])
	assert.Equal(t, 1, spy.failed["not_found"])
}

type failingProjector struct{}

func (failingProjector) Project(context.Context, string) (projection.Outcome, error) {
	return "", errors.New("conexión perdida")
}

func TestWorker_HandleDevuelveError(t *testing.T) {
	w := projection.NewWorker(failingProjector{}, 1, nil, zerolog.Nop())
	assert.Error(t, w.Handle(context.Background(), "v1"))
}

func TestSweeper_ReencolaSoloPasadaLaGracia(t *testing.T) {
	e := newEnv(t)
	e.product(t, "p1", "Camiseta", 10)
	e.sale(t, "vieja", nil, time.Now().Add(-10*time.Minute), map[string]int{"p1": 1})
	e.sale(t, "reciente", nil, time.Now(), map[string]int{"p1": 1})
	e.sale(t, "proyectada", nil, time.Now().Add(-10*time.Minute), map[string]int{"p1": 1})
	_, err := e.projector.Project(context.Background(), "proyectada")
	require.NoError(t, err)

	q := projection.NewChannelQueue(10)
	sw := projection.NewSweeper(e.store.Sales(), q, time.Minute, 2*time.Minute, zerolog.Nop())
	n, err := sw.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "vieja", <-q.Tasks())
}

func TestSweeper_RunSeDetieneConElContexto(t *testing.T) {
	e := newEnv(t)
	q := projection.NewChannelQueue(10)
	sw := projection.NewSweeper(e.store.Sales(), q, 10*time.Millisecond, time.Minute, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sw.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("el barrido no se detuvo")
	}
}

func TestWorker_RegistraIntentosFallidos(t *testing.T) {
	e := newEnv(t)
	e.product(t, "p1", "Camiseta", 1)
	e.sale(t, "v1", nil, time.Now().Add(-time.Hour), map[string]int{"p1": 5})
	w := projection.NewWorker(e.projector, 1, nil, zerolog.Nop(), projection.WithFailureRecorder(e.store.Sales()))
	ctx := context.Background()

	for i := 0; i < entity.MaxProjectionAttempts; i++ {
		assert.ErrorIs(t, w.Handle(ctx, "v1"), domain.ErrInsufficientStock)
	}
	ids, err := e.store.Sales().ListUnprojected(ctx, time.Now(), 10)
	require.NoError(t, err)
	assert.Empty(t, ids)

	assert.ErrorIs(t, w.Handle(ctx, "fantasma"), domain.ErrNotFound)
}

func TestSweeper_VentasSinStockNoBloqueanAlResto(t *testing.T) {
	e := newEnv(t)
	e.product(t, "p1", "Camiseta", 1)
	old := time.Now().Add(-time.Hour)
	for i := 0; i < 12; i++ {
		id := fmt.Sprintf("agotada-%02d", i)
		e.sale(t, id, nil, old.Add(time.Duration(i)*time.Second), map[string]int{"p1": 5})
	}
	e.sale(t, "buena", nil, time.Now().Add(-10*time.Minute), map[string]int{"p1": 1})

	q := projection.NewChannelQueue(10)
	w := projection.NewWorker(e.projector, 1, nil, zerolog.Nop(), projection.WithFailureRecorder(e.store.Sales()))
	sw := projection.NewSweeper(e.store.Sales(), q, time.Minute, time.Minute, zerolog.Nop())
	ctx := context.Background()

	n, err := sw.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, n, "el lote no supera la capacidad de la cola")

	for round := 0; round < 20 && n > 0; round++ {
		for q.Len() > 0 {
			_ = w.Handle(ctx, <-q.Tasks())
		}
		n, err = sw.Sweep(ctx)
		require.NoError(t, err)
	}
	assert.Zero(t, n, "las ventas sin stock dejan de reencolarse")
	assert.Len(t, e.outflows(t, "buena"), 1)
	assert.Equal(t, 0, e.quantity(t, "p1"))
}

func TestSweeper_ColaLlenaNoEsError(t *testing.T) {
	e := newEnv(t)
	e.product(t, "p1", "Camiseta", 10)
	for _, id := range []string{"v1", "v2", "v3"} {
		e.sale(t, id, nil, time.Now().Add(-time.Hour), map[string]int{"p1": 1})
	}
	ctx := context.Background()

	q := projection.NewChannelQueue(2)
	require.NoError(t, q.Enqueue(ctx, "otra"))
	sw := projection.NewSweeper(e.store.Sales(), q, time.Minute, time.Minute, zerolog.Nop())
	n, err := sw.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = sw.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	limited := &limitedQueue{room: 2}
	n, err = projection.NewSweeper(e.store.Sales(), limited, time.Minute, time.Minute, zerolog.Nop()).Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, limited.got, 2)
}

// limitedQueue cola sin capacidad conocida que se llena tras room tareas.
type limitedQueue struct {
	room int
	got  []string
}

func (q *limitedQueue) Enqueue(_ context.Context, saleID string) error {
	if len(q.got) >= q.room {
		return projection.ErrQueueFull
	}
	q.got = append(q.got, saleID)
	return nil
}
