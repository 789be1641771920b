package pdf

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-pos/internal/application/sales"
	"github.com/jhoicas/tienda-pos/internal/domain/entity"
)

func TestGenerateSaleReceipt(t *testing.T) {
	sale := &entity.Sale{
		ID: "v-1", SellerID: "u1", PaymentMethod: entity.PaymentInstallment, Installments: 3,
		TotalAmount: decimal.NewFromInt(70), Discount: decimal.NewFromInt(5), FinalAmount: decimal.NewFromInt(65),
		Notes: "entregar el sábado", CreatedAt: time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC),
	}
	data := sales.ReceiptData{
		StoreName: "Boutique Centro",
		Sale:      sale,
		Customer:  &entity.Customer{Name: "Ana Souza", Phone: "11999990000"},
		Lines: []sales.ReceiptLine{
			{ProductName: "Camiseta", Quantity: 2, UnitPrice: decimal.NewFromInt(35), TotalPrice: decimal.NewFromInt(70)},
		},
	}

	out, err := NewReceiptGenerator().GenerateSaleReceipt(context.Background(), data)
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.Equal(t, "%PDF", string(out[:4]))

	data.Customer = nil
	out, err = NewReceiptGenerator().GenerateSaleReceipt(context.Background(), data)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestGenerateSaleReceipt_SinVenta(t *testing.T) {
	_, err := NewReceiptGenerator().GenerateSaleReceipt(context.Background(), sales.ReceiptData{})
	assert.Error(t, err)
}
