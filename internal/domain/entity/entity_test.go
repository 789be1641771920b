package entity

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestProduct_IsLowStockYMargen(t *testing.T) {
	p := &Product{Quantity: 5, MinStock: 5, CostPrice: decimal.NewFromInt(40), SellingPrice: decimal.NewFromInt(50)}
	assert.True(t, p.IsLowStock())
	assert.True(t, p.ProfitMargin().Equal(decimal.NewFromInt(25)))
	assert.True(t, p.ValidatePrices())

	p.Quantity = 6
	assert.False(t, p.IsLowStock())

	p.CostPrice = decimal.Zero
	assert.True(t, p.ProfitMargin().IsZero())

	p.CostPrice = decimal.NewFromInt(50)
	assert.False(t, p.ValidatePrices(), "precio de venta igual al costo no es válido")
}

func TestSale_FinalizeConDescuentoMayorAlTotal(t *testing.T) {
	s := &Sale{Discount: decimal.NewFromInt(15)}
	items := []*SaleItem{NewSaleItem("i1", "s1", "p1", 2, decimal.NewFromInt(5))}
	s.Finalize(items)

	assert.True(t, items[0].TotalPrice.Equal(decimal.NewFromInt(10)))
	assert.True(t, s.TotalAmount.Equal(decimal.NewFromInt(10)))
	assert.True(t, s.FinalAmount.Equal(decimal.NewFromInt(-5)))
}

func TestPaymentMethod_Valid(t *testing.T) {
	assert.True(t, PaymentPix.Valid())
	assert.False(t, PaymentMethod("dinheiro").Valid())
}

func TestSaleOutflowDescription(t *testing.T) {
	assert.Equal(t, "Venta #v1 - Jean - Cliente: N/A", SaleOutflowDescription("v1", "Jean", nil))
	assert.Equal(t, "Venta #v1 - Jean - Cliente: Ana", SaleOutflowDescription("v1", "Jean", &Customer{Name: "Ana"}))
}
