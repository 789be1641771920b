package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-pos/internal/application/stock"
	"github.com/jhoicas/tienda-pos/internal/domain"
	"github.com/jhoicas/tienda-pos/internal/domain/entity"
	"github.com/jhoicas/tienda-pos/internal/domain/repository"
)

func product(id, barcode string) *entity.Product {
	return &entity.Product{
		ID: id, Title: "Producto " + id, Barcode: barcode,
		CostPrice: decimal.NewFromInt(10), SellingPrice: decimal.NewFromInt(15), IsActive: true,
	}
}

func TestStore_CreateIgnoraCantidad(t *testing.T) {
	s := New()
	ctx := context.Background()
	p := product("p1", "789")
	p.Quantity = 50
	require.NoError(t, s.Products().Create(ctx, p))
	assert.Equal(t, 0, p.Quantity)

	got, err := s.Products().GetByBarcode(ctx, "789")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 0, got.Quantity)

	missing, err := s.Products().GetByBarcode(ctx, "000")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStore_UpdateConservaCantidad(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Products().Create(ctx, product("p1", "")))
	require.NoError(t, s.Run(ctx, func(tx stock.Tx) error {
		return tx.Quantities().SetQuantity(ctx, "p1", 8)
	}))

	edit := product("p1", "")
	edit.Title = "Renombrado"
	edit.Quantity = 999
	require.NoError(t, s.Products().Update(ctx, edit))
	assert.Equal(t, 8, edit.Quantity)

	got, err := s.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Renombrado", got.Title)
	assert.Equal(t, 8, got.Quantity)
}

func TestStore_CodigosUnicos(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Products().Create(ctx, product("p1", "789")))
	err := s.Products().Create(ctx, product("p2", "789"))
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestStore_RunRevierteAnteError(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Products().Create(ctx, product("p1", "")))

	boom := errors.New("boom")
	err := s.Run(ctx, func(tx stock.Tx) error {
		if err := tx.Quantities().SetQuantity(ctx, "p1", 3); err != nil {
			return err
		}
		if err := tx.Products().Create(ctx, product("p2", "")); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)
	p2, err := s.Products().GetByID(ctx, "p2")
	require.NoError(t, err)
	assert.Nil(t, p2)
}

func TestStore_DeleteConMovimientos(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.AddSupplier(entity.Supplier{ID: "sup-1", Name: "Proveedor"})
	require.NoError(t, s.Products().Create(ctx, product("p1", "")))
	require.NoError(t, s.Products().Create(ctx, product("p2", "")))
	require.NoError(t, s.Inflows().Create(ctx, &entity.Inflow{ID: "i1", SupplierID: "sup-1", ProductID: "p1", Quantity: 1}))

	assert.ErrorIs(t, s.Products().Delete(ctx, "p1"), domain.ErrProductReferenced)
	assert.NoError(t, s.Products().Delete(ctx, "p2"))
	assert.ErrorIs(t, s.Products().Delete(ctx, "p2"), domain.ErrNotFound)
}

func TestStore_ListUnprojected(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Products().Create(ctx, product("p1", "")))
	old := time.Now().Add(-time.Hour)
	for _, id := range []string{"v1", "v2", "v3"} {
		require.NoError(t, s.Sales().Create(ctx, &entity.Sale{ID: id, SellerID: "u1", CreatedAt: old}))
		require.NoError(t, s.Sales().CreateItem(ctx, entity.NewSaleItem("it-"+id, id, "p1", 1, decimal.NewFromInt(15))))
	}
	saleID := "v2"
	require.NoError(t, s.Outflows().Create(ctx, &entity.Outflow{ID: "o1", ProductID: "p1", Quantity: 1, SaleID: &saleID}))

	ids, err := s.Sales().ListUnprojected(ctx, time.Now(), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"v1", "v3"}, ids)

	ids, err = s.Sales().ListUnprojected(ctx, old, 10)
	require.NoError(t, err)
	assert.Empty(t, ids, "las ventas dentro del periodo de gracia no se devuelven")

	n, err := s.Outflows().CountBySale(ctx, "v2")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_ListUnprojectedDescartaVentasAgotadas(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Products().Create(ctx, product("p1", "")))
	old := time.Now().Add(-time.Hour)
	for i, id := range []string{"v1", "v2", "v3"} {
		createdAt := old.Add(time.Duration(i) * time.Minute)
		require.NoError(t, s.Sales().Create(ctx, &entity.Sale{ID: id, SellerID: "u1", CreatedAt: createdAt}))
		require.NoError(t, s.Sales().CreateItem(ctx, entity.NewSaleItem("it-"+id, id, "p1", 1, decimal.NewFromInt(15))))
	}

	require.NoError(t, s.Sales().RecordProjectionFailure(ctx, "v1", "insufficient_stock", time.Now()))
	ids, err := s.Sales().ListUnprojected(ctx, time.Now(), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"v2", "v3", "v1"}, ids, "primero las de menos intentos")

	for i := 1; i < entity.MaxProjectionAttempts; i++ {
		require.NoError(t, s.Sales().RecordProjectionFailure(ctx, "v1", "insufficient_stock", time.Now()))
	}
	ids, err = s.Sales().ListUnprojected(ctx, time.Now(), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"v2", "v3"}, ids)

	assert.NoError(t, s.Sales().RecordProjectionFailure(ctx, "nada", "error", time.Now()))
}

func TestStore_SearchClientes(t *testing.T) {
	s := New()
	s.AddCustomer(entity.Customer{ID: "c1", Name: "Ana Souza", Phone: "11999990000", IsActive: true})
	s.AddCustomer(entity.Customer{ID: "c2", Name: "Bruno Lima", Email: "ana@correo.com", IsActive: true})
	s.AddCustomer(entity.Customer{ID: "c3", Name: "Ana Inactiva", IsActive: false})

	got, err := s.Customers().Search(context.Background(), "ana", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Ana Souza", got[0].Name)
	assert.Equal(t, "Bruno Lima", got[1].Name)

	list, err := s.Products().List(context.Background(), repository.ProductFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}
