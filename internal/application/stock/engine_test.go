package stock_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-pos/internal/application/stock"
	"github.com/jhoicas/tienda-pos/internal/domain"
	"github.com/jhoicas/tienda-pos/internal/domain/entity"
	"github.com/jhoicas/tienda-pos/internal/domain/repository"
	"github.com/jhoicas/tienda-pos/internal/infrastructure/memory"
)

type metricsSpy struct {
	mu       sync.Mutex
	applied  map[entity.LedgerKind]int
	rejected map[string]int
}

func newMetricsSpy() *metricsSpy {
	return &metricsSpy{applied: map[entity.LedgerKind]int{}, rejected: map[string]int{}}
}

func (m *metricsSpy) MutationApplied(kind entity.LedgerKind, qty int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applied[kind] += qty
}

func (m *metricsSpy) MutationRejected(kind entity.LedgerKind, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejected[reason]++
}

func setup(t *testing.T) (*memory.Store, *stock.Engine, *metricsSpy) {
	t.Helper()
	store := memory.New()
	spy := newMetricsSpy()
	return store, stock.NewEngine(store, zerolog.Nop(), stock.WithMetrics(spy)), spy
}

func addProduct(t *testing.T, store *memory.Store, id, title string) {
	t.Helper()
	require.NoError(t, store.Products().Create(context.Background(), &entity.Product{
		ID: id, Title: title, CostPrice: decimal.NewFromInt(20), SellingPrice: decimal.NewFromInt(35),
		MinStock: entity.DefaultMinStock, IsActive: true,
	}))
}

func quantity(t *testing.T, store *memory.Store, id string) int {
	t.Helper()
	p, err := store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Quantity
}

// ledgerBalance suma entradas menos salidas del producto.
func ledgerBalance(t *testing.T, store *memory.Store, id string) int {
	t.Helper()
	ctx := context.Background()
	ins, err := store.Inflows().List(ctx, repository.InflowFilter{ProductID: id})
	require.NoError(t, err)
	outs, err := store.Outflows().List(ctx, repository.OutflowFilter{ProductID: id})
	require.NoError(t, err)
	total := 0
	for _, in := range ins {
		total += in.Quantity
	}
	for _, o := range outs {
		total -= o.Quantity
	}
	return total
}

func TestEngine_ApplyEntradaYSalida(t *testing.T) {
	store, engine, spy := setup(t)
	store.AddSupplier(entity.Supplier{ID: "sup-1", Name: "Distribuidora Central"})
	addProduct(t, store, "p1", "Camiseta básica")
	ctx := context.Background()

	res, err := engine.Apply(ctx, stock.Mutation{ProductID: "p1", Delta: 10, Kind: entity.LedgerInflow, SupplierID: "sup-1", Description: "compra"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.PreviousQty)
	assert.Equal(t, 10, res.NewQty)
	assert.NotEmpty(t, res.LedgerID)

	res, err = engine.Apply(ctx, stock.Mutation{ProductID: "p1", Delta: -3, Kind: entity.LedgerOutflow, Description: "avería"})
	require.NoError(t, err)
	assert.Equal(t, 7, res.NewQty)

	assert.Equal(t, 7, quantity(t, store, "p1"))
	assert.Equal(t, 7, ledgerBalance(t, store, "p1"))
	assert.Equal(t, 10, spy.applied[entity.LedgerInflow])
	assert.Equal(t, 3, spy.applied[entity.LedgerOutflow])
}

func TestEngine_SalidaMayorQueStockNoEscribeNada(t *testing.T) {
	store, engine, spy := setup(t)
	store.AddSupplier(entity.Supplier{ID: "sup-1", Name: "Distribuidora Central"})
	addProduct(t, store, "p1", "Jean azul")
	ctx := context.Background()
	_, err := engine.Receive(ctx, "p1", 2, "", "compra")
	require.NoError(t, err)

	_, err = engine.Adjust(ctx, "p1", 3, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	var stockErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 2, stockErr.Available)
	assert.Equal(t, 3, stockErr.Requested)
	assert.Equal(t, "Jean azul", stockErr.Title)

	assert.Equal(t, 2, quantity(t, store, "p1"))
	outs, err := store.Outflows().List(ctx, repository.OutflowFilter{ProductID: "p1"})
	require.NoError(t, err)
	assert.Empty(t, outs)
	assert.Equal(t, 1, spy.rejected["insufficient_stock"])
}

func TestEngine_Validaciones(t *testing.T) {
	_, engine, _ := setup(t)
	ctx := context.Background()
	cases := []stock.Mutation{
		{ProductID: "", Delta: 1, Kind: entity.LedgerInflow, SupplierID: "s"},
		{ProductID: "p1", Delta: 0, Kind: entity.LedgerOutflow},
		{ProductID: "p1", Delta: -1, Kind: entity.LedgerInflow, SupplierID: "s"},
		{ProductID: "p1", Delta: 1, Kind: entity.LedgerInflow},
		{ProductID: "p1", Delta: 1, Kind: entity.LedgerOutflow},
		{ProductID: "p1", Delta: 1, Kind: "transfer"},
	}
	for _, m := range cases {
		_, err := engine.Apply(ctx, m)
		assert.True(t, errors.Is(err, domain.ErrInvalidInput), "mutación %+v", m)
	}
}

func TestEngine_ProductoInexistente(t *testing.T) {
	_, engine, _ := setup(t)
	_, err := engine.Adjust(context.Background(), "no-existe", 1, "")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestEngine_WithinRevierteTodoAnteError(t *testing.T) {
	store, engine, spy := setup(t)
	store.AddSupplier(entity.Supplier{ID: "sup-1", Name: "Distribuidora Central"})
	addProduct(t, store, "p1", "Gorra")
	ctx := context.Background()
	_, err := engine.Receive(ctx, "p1", 5, "sup-1", "compra")
	require.NoError(t, err)

	boom := errors.New("fallo posterior")
	err = engine.Within(ctx, func(s *stock.Scope) error {
		if _, err := s.Apply(ctx, stock.Mutation{ProductID: "p1", Delta: -4, Kind: entity.LedgerOutflow, Description: "x"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 5, quantity(t, store, "p1"))
	assert.Equal(t, 5, ledgerBalance(t, store, "p1"))
	assert.Zero(t, spy.applied[entity.LedgerOutflow], "no se cuentan mutaciones revertidas")
}

func TestEngine_ReceiveBulk(t *testing.T) {
	store, engine, _ := setup(t)
	store.AddSupplier(entity.Supplier{ID: "sup-1", Name: "Distribuidora Central"})
	store.AddSupplier(entity.Supplier{ID: "sup-2", Name: "Textiles del Sur"})
	addProduct(t, store, "p1", "Camiseta")
	addProduct(t, store, "p2", "Pantalón")
	ctx := context.Background()

	out, err := engine.ReceiveBulk(ctx, stock.BulkReceipt{
		Lines: []stock.ReceiptLine{{ProductID: "p2", Quantity: 4}, {ProductID: "p1", Quantity: 6, Notes: " factura 778 "}, {ProductID: "p2", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, "sup-1", out.Supplier.ID, "sin proveedor se usa el primero registrado")
	require.Len(t, out.Entries, 3)
	assert.Equal(t, "Pantalón", out.Entries[0].ProductTitle)
	assert.Equal(t, 4, out.Entries[0].NewStock)
	assert.Equal(t, 6, out.Entries[1].NewStock)
	assert.Equal(t, 5, out.Entries[2].NewStock)

	ins, err := store.Inflows().List(ctx, repository.InflowFilter{ProductID: "p1"})
	require.NoError(t, err)
	require.Len(t, ins, 1)
	assert.Equal(t, "Entrada vía escáner - factura 778", ins[0].Description)
	assert.Equal(t, "sup-1", ins[0].SupplierID)

	out, err = engine.ReceiveBulk(ctx, stock.BulkReceipt{SupplierID: "sup-2", Lines: []stock.ReceiptLine{{ProductID: "p1", Quantity: 1}}})
	require.NoError(t, err)
	assert.Equal(t, "Textiles del Sur", out.Supplier.Name)
	ins, err = store.Inflows().List(ctx, repository.InflowFilter{ProductTitle: "camis"})
	require.NoError(t, err)
	require.Len(t, ins, 2)
	assert.Equal(t, stock.ScannerDescription, ins[0].Description)
}

func TestEngine_ReceiveBulkEsAtomico(t *testing.T) {
	store, engine, _ := setup(t)
	store.AddSupplier(entity.Supplier{ID: "sup-1", Name: "Distribuidora Central"})
	addProduct(t, store, "p1", "Camiseta")
	ctx := context.Background()

	_, err := engine.ReceiveBulk(ctx, stock.BulkReceipt{Lines: []stock.ReceiptLine{{ProductID: "p1", Quantity: 3}, {ProductID: "fantasma", Quantity: 2}}})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Equal(t, 0, quantity(t, store, "p1"))

	_, err = engine.ReceiveBulk(ctx, stock.BulkReceipt{SupplierID: "sup-x", Lines: []stock.ReceiptLine{{ProductID: "p1", Quantity: 3}}})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = engine.ReceiveBulk(ctx, stock.BulkReceipt{})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestEngine_ReceiveBulkConUnaCantidadCeroNoRegistraNinguna(t *testing.T) {
	store, engine, _ := setup(t)
	store.AddSupplier(entity.Supplier{ID: "sup-1", Name: "Distribuidora Central"})
	addProduct(t, store, "p1", "Camiseta")
	addProduct(t, store, "p2", "Pantalón")
	addProduct(t, store, "p3", "Gorra")
	ctx := context.Background()
	_, err := engine.Receive(ctx, "p3", 2, "", "stock inicial")
	require.NoError(t, err)

	_, err = engine.ReceiveBulk(ctx, stock.BulkReceipt{Lines: []stock.ReceiptLine{
		{ProductID: "p1", Quantity: 4},
		{ProductID: "p2", Quantity: 0},
		{ProductID: "p3", Quantity: 7},
	}})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Equal(t, 0, quantity(t, store, "p1"))
	assert.Equal(t, 0, quantity(t, store, "p2"))
	assert.Equal(t, 2, quantity(t, store, "p3"))
	for _, id := range []string{"p1", "p2"} {
		ins, err := store.Inflows().List(ctx, repository.InflowFilter{ProductID: id})
		require.NoError(t, err)
		assert.Empty(t, ins, id)
	}
}

func TestEngine_CantidadesFueraDeRango(t *testing.T) {
	store, engine, _ := setup(t)
	store.AddSupplier(entity.Supplier{ID: "sup-1", Name: "Distribuidora Central"})
	addProduct(t, store, "p1", "Camiseta")
	ctx := context.Background()

	_, err := engine.Receive(ctx, "p1", entity.MaxQuantity+1, "", "compra")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "entrada individual")

	_, err = engine.Adjust(ctx, "p1", entity.MaxQuantity+1, "")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "ajuste")

	_, err = engine.ReceiveBulk(ctx, stock.BulkReceipt{Lines: []stock.ReceiptLine{{ProductID: "p1", Quantity: entity.MaxQuantity + 1}}})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "línea del lote")

	// cada línea es válida pero el stock resultante no cabe
	_, err = engine.ReceiveBulk(ctx, stock.BulkReceipt{Lines: []stock.ReceiptLine{
		{ProductID: "p1", Quantity: entity.MaxQuantity},
		{ProductID: "p1", Quantity: 1},
	}})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "stock resultante")
	assert.Equal(t, 0, quantity(t, store, "p1"))

	_, err = engine.Receive(ctx, "p1", entity.MaxQuantity, "", "compra")
	require.NoError(t, err, "el máximo es admitido")
	assert.Equal(t, entity.MaxQuantity, quantity(t, store, "p1"))
}

func TestEngine_ReceiveBulkSinProveedores(t *testing.T) {
	store, engine, _ := setup(t)
	addProduct(t, store, "p1", "Camiseta")
	_, err := engine.ReceiveBulk(context.Background(), stock.BulkReceipt{Lines: []stock.ReceiptLine{{ProductID: "p1", Quantity: 1}}})
	assert.ErrorIs(t, err, domain.ErrNoSupplier)
}

func TestEngine_SalidasConcurrentesNuncaDejanStockNegativo(t *testing.T) {
	store, engine, _ := setup(t)
	store.AddSupplier(entity.Supplier{ID: "sup-1", Name: "Distribuidora Central"})
	addProduct(t, store, "p1", "Medias")
	ctx := context.Background()
	_, err := engine.Receive(ctx, "p1", 10, "", "compra")
	require.NoError(t, err)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := engine.Adjust(ctx, "p1", 1, "conteo"); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, ok)
	assert.Equal(t, 0, quantity(t, store, "p1"))
	assert.Equal(t, 0, ledgerBalance(t, store, "p1"))
}
