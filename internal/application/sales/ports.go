package sales

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-pos/internal/domain/entity"
)

// StockMode cuándo se descuenta el stock de una venta.
type StockMode string

const (
	// StockModeSync descuenta dentro de la transacción de la venta.
	StockModeSync StockMode = "sync"
	// StockModeDeferred deja el descuento a la proyección posterior al commit.
	StockModeDeferred StockMode = "deferred"
)

// Enqueuer encola la proyección de salidas de una venta ya confirmada.
type Enqueuer interface {
	Enqueue(ctx context.Context, saleID string) error
}

// ReceiptLine línea del recibo con el nombre del producto resuelto.
type ReceiptLine struct {
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
}

// ReceiptData todo lo necesario para imprimir el recibo de una venta.
type ReceiptData struct {
	StoreName string
	Sale      *entity.Sale
	Customer  *entity.Customer // nil = venta sin cliente
	Lines     []ReceiptLine
}

// ReceiptGenerator genera el recibo PDF de una venta.
type ReceiptGenerator interface {
	GenerateSaleReceipt(ctx context.Context, data ReceiptData) ([]byte, error)
}

// Metrics observa ventas confirmadas y rechazadas.
type Metrics interface {
	SaleCommitted(method entity.PaymentMethod, amount decimal.Decimal)
	SaleRejected(reason string)
}

type nopMetrics struct{}

func (nopMetrics) SaleCommitted(entity.PaymentMethod, decimal.Decimal) {}
func (nopMetrics) SaleRejected(string)                                 {}
